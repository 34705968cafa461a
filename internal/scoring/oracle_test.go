package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"adforge/internal/creative"
)

func TestComposite_WeightedSum(t *testing.T) {
	tests := []struct {
		name        string
		breakdown   creative.ScoreBreakdown
		wantOverall int
		wantCTR     float64
	}{
		{
			name:        "all zero",
			breakdown:   creative.ScoreBreakdown{},
			wantOverall: 0,
			wantCTR:     0,
		},
		{
			name: "all hundred",
			breakdown: creative.ScoreBreakdown{
				Hook: 100, Alignment: 100, Fit: 100, Clarity: 100, Match: 100,
			},
			wantOverall: 100,
			wantCTR:     10,
		},
		{
			// 0.25*80 + 0.20*60 + 0.20*70 + 0.15*90 + 0.20*50 = 69.5 -> 70
			name: "mixed rounds to nearest",
			breakdown: creative.ScoreBreakdown{
				Hook: 80, Alignment: 60, Fit: 70, Clarity: 90, Match: 50,
			},
			wantOverall: 70,
			wantCTR:     7.0,
		},
		{
			// 0.25*73 + 0.20*61 + 0.20*58 + 0.15*67 + 0.20*52 = 62.5 -> 63 (round half up)
			name: "half rounds up",
			breakdown: creative.ScoreBreakdown{
				Hook: 73, Alignment: 61, Fit: 58, Clarity: 67, Match: 52,
			},
			wantOverall: 63,
			wantCTR:     6.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overall, ctr := Composite(tt.breakdown)
			assert.Equal(t, tt.wantOverall, overall)
			assert.InDelta(t, tt.wantCTR, ctr, 0.001)
		})
	}
}

func TestComposite_CTRHasTwoDecimalPrecision(t *testing.T) {
	for overall := 0; overall <= 100; overall++ {
		b := creative.ScoreBreakdown{
			Hook: float64(overall), Alignment: float64(overall),
			Fit: float64(overall), Clarity: float64(overall), Match: float64(overall),
		}
		_, ctr := Composite(b)
		assert.GreaterOrEqual(t, ctr, 0.0)
		assert.LessOrEqual(t, ctr, 10.0)
		// Two decimals: scaling by 100 must land on an integer.
		assert.InDelta(t, ctr*100, float64(int(ctr*100+0.5)), 1e-9)
	}
}

func TestClampBreakdown(t *testing.T) {
	got := clampBreakdown(creative.ScoreBreakdown{
		Hook: -10, Alignment: 150, Fit: 50, Clarity: 100.01, Match: 0,
	})
	assert.Equal(t, 0.0, got.Hook)
	assert.Equal(t, 100.0, got.Alignment)
	assert.Equal(t, 50.0, got.Fit)
	assert.Equal(t, 100.0, got.Clarity)
	assert.Equal(t, 0.0, got.Match)
}

func TestInputValidate(t *testing.T) {
	full := validInput()

	assert.Nil(t, full.validate())

	missingAsset := full
	missingAsset.Asset = nil
	assert.NotNil(t, missingAsset.validate())

	missingHeadline := full
	missingHeadline.Headline = nil
	assert.NotNil(t, missingHeadline.validate())

	missingBody := full
	missingBody.Body = nil
	assert.NotNil(t, missingBody.validate())

	missingTargeting := full
	missingTargeting.Targeting = nil
	assert.NotNil(t, missingTargeting.validate())

	// Description is optional.
	noDescription := full
	noDescription.Description = nil
	assert.Nil(t, noDescription.validate())
}

// validInput builds a fully-populated scoring input for tests.
func validInput() Input {
	return Input{
		Asset: &creative.Asset{
			ID: "as-1", Type: creative.AssetVideo, Label: "summer splash",
			Themes: []string{"summer", "beach"},
		},
		Headline: &creative.CopyItem{
			ID: "h-1", Kind: creative.CopyHeadline,
			Text: "Get your summer started", Awareness: creative.StageSolutionAware,
		},
		Body: &creative.CopyItem{
			ID: "b-1", Kind: creative.CopyBody,
			Text: "Beach-ready gear shipped to your door.", Awareness: creative.StageSolutionAware,
		},
		Description: &creative.CopyItem{
			ID: "d-1", Kind: creative.CopyDescription, Text: "Free returns.",
		},
		CTA: creative.CTAShopNow,
		Targeting: &creative.AdSet{
			ID: "adset-1", AgeMin: 25, AgeMax: 34,
			Interests: []string{"surfing"}, Locations: []string{"US"},
			Awareness: creative.StageSolutionAware,
		},
	}
}
