package shapec

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
)

type benchStruct struct {
	Val      []string
	Mod      []int8
	Integers []int16
	Float3   []float32
	Float6   []float64
}

func benchValue() benchStruct {
	return benchStruct{
		Val:      []string{"azerty", "hello", "world", "random"},
		Mod:      []int8{12, 10, 13, 1},
		Integers: []int16{100, 250, 300},
		Float3:   []float32{12.13, 16.23, 75.1},
		Float6:   []float64{100.5, 165.63, 153.5},
	}
}

func BenchmarkDump(b *testing.B) {
	z := benchValue()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Dump(z)
	}
}

func BenchmarkLoad(b *testing.B) {
	z := benchValue()
	data, _ := Dump(z)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Load[benchStruct](data)
	}
}

func BenchmarkDumpXML(b *testing.B) {
	z := benchValue()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = DumpXML(z, Config{})
	}
}

func BenchmarkLoadXML(b *testing.B) {
	z := benchValue()
	doc, _ := DumpXML(z, Config{})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = LoadXML[benchStruct](doc, Config{})
	}
}

// CBOR baselines for comparing against a schema-free binary format.

func BenchmarkCBOREncode(b *testing.B) {
	z := benchValue()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = cbor.Marshal(z)
	}
}

func BenchmarkCBORDecode(b *testing.B) {
	z := benchValue()
	data, _ := cbor.Marshal(z)
	res := &benchStruct{}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = cbor.Unmarshal(data, res)
	}
}
