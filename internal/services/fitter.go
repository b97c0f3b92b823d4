package services

import (
	"fmt"
	"math"

	"github.com/dodgedlol2/KaspaMetrics/internal/models"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// nearZero guards divisions by trend values and variance sums.
const nearZero = 1e-12

// ModelFitter fits one of the four trend model families to a price series.
// It is stateless; a single instance is safe for concurrent use.
type ModelFitter struct{}

// NewModelFitter creates a new fitter instance.
func NewModelFitter() *ModelFitter {
	return &ModelFitter{}
}

// Fit performs a full-sample fit of the requested family and derives the
// trend value at the last index plus the deviation of the current price
// from it.
func (f *ModelFitter) Fit(series *models.PriceSeries, model models.ModelType) (*models.FitResult, error) {
	n := series.Len()
	if n < model.MinPoints() {
		return nil, fmt.Errorf("%w: model %s needs %d points, series has %d",
			ErrInsufficientData, model, model.MinPoints(), n)
	}

	prices := series.Prices()
	if model.UsesLogPrice() {
		for i, p := range prices {
			if p <= 0 {
				return nil, fmt.Errorf("%w: price %v at index %d", ErrNonPositivePrice, p, i)
			}
		}
	}

	result := &models.FitResult{ModelType: model}
	var err error
	switch model {
	case models.ModelLinearLog:
		err = f.fitLinearLog(prices, result)
	case models.ModelPolynomial2:
		err = f.fitPolynomial2(prices, result)
	case models.ModelExponential:
		err = f.fitExponential(prices, result)
	case models.ModelLogarithmic:
		err = f.fitLogarithmic(prices, result)
	default:
		return nil, fmt.Errorf("%w: unknown model type %q", ErrComputation, model)
	}
	if err != nil {
		return nil, err
	}

	result.TrendValue = result.TrendAt(n - 1)
	result.CurrentPrice = prices[n-1]

	dev, err := deviationPct(result.CurrentPrice, result.TrendValue)
	if err != nil {
		return nil, err
	}
	result.DeviationPct = dev

	return result, nil
}

// fitLinearLog regresses log(price) on log(day+1): the power law.
func (f *ModelFitter) fitLinearLog(prices []float64, out *models.FitResult) error {
	x := make([]float64, len(prices))
	y := make([]float64, len(prices))
	for i, p := range prices {
		x[i] = math.Log(float64(i) + 1)
		y[i] = math.Log(p)
	}
	return f.linregress(x, y, out)
}

// fitExponential regresses log(price) on the raw day index.
func (f *ModelFitter) fitExponential(prices []float64, out *models.FitResult) error {
	x := make([]float64, len(prices))
	y := make([]float64, len(prices))
	for i, p := range prices {
		x[i] = float64(i)
		y[i] = math.Log(p)
	}
	return f.linregress(x, y, out)
}

// fitLogarithmic regresses the raw price on log(day+1).
func (f *ModelFitter) fitLogarithmic(prices []float64, out *models.FitResult) error {
	x := make([]float64, len(prices))
	for i := range prices {
		x[i] = math.Log(float64(i) + 1)
	}
	return f.linregress(x, prices, out)
}

// fitPolynomial2 performs a degree-2 least-squares fit of price on day
// index via the normal equations. The reported R-squared is
// 1-ssRes/ssTot clamped to [0,1], the same scale the linear families
// report.
func (f *ModelFitter) fitPolynomial2(prices []float64, out *models.FitResult) error {
	n := len(prices)

	// Normal equations: sum of x^k for k=0..4 and sum of x^k*y for k=0..2.
	var sx [5]float64
	var sxy [3]float64
	for i, p := range prices {
		day := float64(i)
		pow := 1.0
		for k := 0; k <= 4; k++ {
			sx[k] += pow
			if k <= 2 {
				sxy[k] += pow * p
			}
			pow *= day
		}
	}

	a := mat.NewDense(3, 3, []float64{
		sx[0], sx[1], sx[2],
		sx[1], sx[2], sx[3],
		sx[2], sx[3], sx[4],
	})
	b := mat.NewVecDense(3, []float64{sxy[0], sxy[1], sxy[2]})

	var c mat.VecDense
	if err := c.SolveVec(a, b); err != nil {
		return fmt.Errorf("%w: polynomial normal equations: %v", ErrSingularFit, err)
	}
	coeffs := []float64{c.AtVec(0), c.AtVec(1), c.AtVec(2)}

	mean := 0.0
	for _, p := range prices {
		mean += p
	}
	mean /= float64(n)

	ssRes, ssTot := 0.0, 0.0
	for i, p := range prices {
		day := float64(i)
		pred := coeffs[0] + coeffs[1]*day + coeffs[2]*day*day
		ssRes += (p - pred) * (p - pred)
		ssTot += (p - mean) * (p - mean)
	}

	rSquared := 0.0
	if ssTot > nearZero {
		rSquared = 1 - ssRes/ssTot
	}
	if rSquared < 0 {
		rSquared = 0
	} else if rSquared > 1 {
		rSquared = 1
	}

	out.Coefficients = coeffs
	out.Slope = coeffs[2]
	out.Intercept = coeffs[0]
	out.RSquared = rSquared
	// Slope inference is not defined for the multi-coefficient fit.
	out.StdError = 0
	out.PValue = 0
	return nil
}

// linregress is an ordinary least-squares fit of y on x reporting slope,
// intercept, squared Pearson correlation, the two-sided p-value of the
// slope's t-test, and the standard error of the slope.
func (f *ModelFitter) linregress(x, y []float64, out *models.FitResult) error {
	n := float64(len(x))

	mx, my := 0.0, 0.0
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= n
	my /= n

	ssXX, ssYY, ssXY := 0.0, 0.0, 0.0
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		ssXX += dx * dx
		ssYY += dy * dy
		ssXY += dx * dy
	}
	if ssXX < nearZero {
		return fmt.Errorf("%w: zero-variance independent variable", ErrSingularFit)
	}

	slope := ssXY / ssXX
	intercept := my - slope*mx

	rSquared := 0.0
	if ssYY > nearZero {
		rSquared = (ssXY * ssXY) / (ssXX * ssYY)
	}
	if rSquared > 1 {
		rSquared = 1
	}

	df := len(x) - 2
	stdErr, pValue := 0.0, 1.0
	if df > 0 {
		stdErr = math.Sqrt((ssYY/ssXX - slope*slope) / float64(df))
		if stdErr < 0 || math.IsNaN(stdErr) {
			stdErr = 0
		}
		switch {
		case 1-rSquared < nearZero:
			pValue = 0
		default:
			t := math.Abs(slope) / math.Sqrt((ssYY/ssXX-slope*slope)/float64(df))
			dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
			pValue = 2 * (1 - dist.CDF(t))
		}
	}

	out.Slope = slope
	out.Intercept = intercept
	out.RSquared = rSquared
	out.StdError = stdErr
	out.PValue = pValue
	return nil
}

// deviationPct is the signed percentage gap between the observed price and
// the fitted trend value.
func deviationPct(current, trend float64) (float64, error) {
	if math.IsNaN(trend) || math.IsInf(trend, 0) || math.Abs(trend) < nearZero {
		return 0, fmt.Errorf("%w: degenerate trend value %v", ErrComputation, trend)
	}
	return (current - trend) / trend * 100, nil
}
