package shapec

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type goldenProfile struct {
	Name    string           `yaml:"name"`
	Text    string           `yaml:"text"`
	Numbers []int32          `yaml:"numbers"`
	Ratio   float64          `yaml:"ratio"`
	Labels  map[string]int64 `yaml:"labels"`
}

type goldenFixtures struct {
	Profiles []goldenProfile `yaml:"profiles"`
}

func loadFixtures(t *testing.T) []goldenProfile {
	t.Helper()
	data, err := os.ReadFile("testdata/cases.yaml")
	require.NoError(t, err)
	var fixtures goldenFixtures
	require.NoError(t, yaml.Unmarshal(data, &fixtures))
	require.NotEmpty(t, fixtures.Profiles)
	return fixtures.Profiles
}

func TestGoldenBinary(t *testing.T) {
	for _, profile := range loadFixtures(t) {
		t.Run(profile.Name, func(t *testing.T) {
			n, err := Length(profile)
			require.NoError(t, err)
			data, err := Dump(profile)
			require.NoError(t, err)
			require.Len(t, data, n)

			back, err := Load[goldenProfile](data)
			require.NoError(t, err)
			require.Equal(t, profile.Name, back.Name)
			require.Equal(t, profile.Text, back.Text)
			require.Equal(t, profile.Ratio, back.Ratio)
			require.ElementsMatch(t, profile.Numbers, back.Numbers)
			require.Equal(t, len(profile.Labels), len(back.Labels))
			for k, v := range profile.Labels {
				require.Equal(t, v, back.Labels[k])
			}
		})
	}
}

func TestGoldenXML(t *testing.T) {
	for _, profile := range loadFixtures(t) {
		for _, cfg := range []Config{{UseBase64: false}, {UseBase64: true}} {
			doc, err := DumpXML(profile, cfg)
			require.NoError(t, err)
			data, err := doc.Bytes()
			require.NoError(t, err)

			parsed, err := ParseDocument(data)
			require.NoError(t, err)
			back, err := LoadXML[goldenProfile](parsed, cfg)
			require.NoError(t, err)

			require.Equal(t, profile.Name, back.Name, "profile %s UseBase64=%v", profile.Name, cfg.UseBase64)
			require.Equal(t, profile.Text, back.Text)
			require.Equal(t, profile.Ratio, back.Ratio)
			require.ElementsMatch(t, profile.Numbers, back.Numbers)
			for k, v := range profile.Labels {
				require.Equal(t, v, back.Labels[k])
			}
		}
	}
}
