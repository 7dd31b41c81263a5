package common_test

import (
	"math"
	"testing"

	"github.com/gene2phenotype/g2ptools/common"
)

func TestCleanDiseaseName(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"KCNQ2-related epileptic encephalopathy", "epileptic encephalopathy"},
		{"Epileptic Encephalopathy", "epileptic encephalopathy"},
		{"retinitis  pigmentosa, type 2", "retinitis pigmentosa type 2"},
		{"Charcot-Marie-Tooth disease", "charcot marie tooth disease"},
		{"", ""},
	}

	for _, c := range cases {
		got := common.CleanDiseaseName(c.input)
		if got != c.want {
			t.Errorf("CleanDiseaseName(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestSimilarityRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"abcd", "abcd", 1},
		{"abcd", "wxyz", 0},
		{"", "", 1},
		{"abcd", "", 0},
		// 3 matching characters out of 8
		{"abcd", "bcde", 0.75},
	}

	for _, c := range cases {
		got := common.SimilarityRatio(c.a, c.b)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("SimilarityRatio(%q, %q) = %g, want %g", c.a, c.b, got, c.want)
		}
	}
}
