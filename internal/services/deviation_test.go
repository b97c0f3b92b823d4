package services

import (
	"math"
	"testing"

	"github.com/dodgedlol2/KaspaMetrics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviationClassifier_Labels(t *testing.T) {
	classifier := NewDeviationClassifier()

	tests := []struct {
		name string
		dev  float64
		want string
	}{
		{"well above trend", 25.0, LabelOvervalued},
		{"just above threshold", 10.01, LabelOvervalued},
		{"at upper threshold", 10.0, LabelFairValue},
		{"near trend", 0.0, LabelFairValue},
		{"at lower threshold", -10.0, LabelFairValue},
		{"just below threshold", -10.01, LabelUndervalued},
		{"well below trend", -40.0, LabelUndervalued},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit := &models.FitResult{
				ModelType:    models.ModelLinearLog,
				TrendValue:   1.0,
				DeviationPct: tt.dev,
			}
			dev, label, err := classifier.Classify(fit)
			require.NoError(t, err)
			assert.Equal(t, tt.dev, dev)
			assert.Equal(t, tt.want, label)
		})
	}
}

func TestDeviationClassifier_RejectsDegenerateTrend(t *testing.T) {
	classifier := NewDeviationClassifier()

	for _, trend := range []float64{math.NaN(), math.Inf(1)} {
		fit := &models.FitResult{ModelType: models.ModelLinearLog, TrendValue: trend}
		_, _, err := classifier.Classify(fit)
		assert.ErrorIs(t, err, ErrComputation)
	}
}
