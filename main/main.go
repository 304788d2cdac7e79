package main

import (
	"os"
	"path/filepath"
	"reflect"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/shapec/shapec"
)

// node is an exclusively-owned linked list: each node owns the next,
// absent at the tail.
type node struct {
	Value int32
	Next  *node
}

func makeChain(count int32) *node {
	var head *node
	for i := int32(0); i < count; i++ {
		head = &node{Value: i, Next: head}
	}
	return head
}

type trivial struct {
	A int32
	B float64
	C bool
	D byte
}

type nontrivial struct {
	Words  []string
	Label  shapec.Option[string]
	Pair   shapec.Pair[int32, string]
	Triple shapec.Triple[int32, float64, bool]
	T      trivial
}

type example struct {
	A int32
	B float64
	C bool
	D byte

	Str    string
	Ints   []int32
	Ratios map[string]float64

	T trivial
	N nontrivial
	P *nontrivial
}

func sample() example {
	n := nontrivial{
		Words:  []string{"A", "simple", "serialization", "library"},
		Label:  shapec.Some("Optional"),
		Pair:   shapec.MakePair(int32(5), "Five"),
		Triple: shapec.Triple[int32, float64, bool]{First: 10, Second: 3.2, Third: false},
		T:      trivial{A: 5, B: 10.0, C: true, D: 'd'},
	}
	owned := n
	return example{
		A:      5,
		B:      10.0,
		C:      true,
		D:      'd',
		Str:    "Hello",
		Ints:   []int32{1, 2, 3, 4, 5},
		Ratios: map[string]float64{"low": 0.1, "mid": 0.2, "high": 0.5},
		T:      trivial{A: 5, B: 10.0, C: true, D: 'd'},
		N:      n,
		P:      &owned,
	}
}

func main() {

	var (
		flagOut    string
		flagBase64 bool
		flagLevel  string
	)

	pflag.StringVarP(&flagOut, "out", "o", ".", "directory for the dumped files")
	pflag.BoolVarP(&flagBase64, "base64", "b", false, "encode XML primitive leaves as base64")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log level for JSON logger")

	pflag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", flagLevel).Msg("could not parse log level")
	}
	log = log.Level(level)

	cfg := shapec.Config{UseBase64: flagBase64}

	original := sample()
	binPath := filepath.Join(flagOut, "example.dat")
	if err := shapec.DumpFile(original, binPath); err != nil {
		log.Fatal().Err(err).Msg("could not dump binary file")
	}
	loaded, err := shapec.LoadFile[example](binPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", binPath).Msg("could not load binary file")
	}
	size, _ := shapec.Length(original)
	log.Info().
		Str("path", binPath).
		Int("bytes", size).
		Bool("identical", reflect.DeepEqual(original, loaded)).
		Msg("binary round trip")

	xmlPath := filepath.Join(flagOut, "example.xml")
	if err := shapec.DumpXMLFile(original, xmlPath, cfg); err != nil {
		log.Fatal().Err(err).Msg("could not dump XML file")
	}
	loadedXML, err := shapec.LoadXMLFile[example](xmlPath, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("path", xmlPath).Msg("could not load XML file")
	}
	log.Info().
		Str("path", xmlPath).
		Bool("base64", flagBase64).
		Bool("identical", reflect.DeepEqual(original, loadedXML)).
		Msg("XML round trip")

	chain := makeChain(10)
	chainPath := filepath.Join(flagOut, "chain.xml")
	if err := shapec.DumpXMLFile(chain, chainPath, cfg); err != nil {
		log.Fatal().Err(err).Msg("could not dump chain")
	}
	loadedChain, err := shapec.LoadXMLFile[*node](chainPath, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("path", chainPath).Msg("could not load chain")
	}
	depth := 0
	for n := loadedChain; n != nil; n = n.Next {
		depth++
	}
	log.Info().
		Str("path", chainPath).
		Int("nodes", depth).
		Bool("identical", reflect.DeepEqual(chain, loadedChain)).
		Msg("owned chain round trip")
}
