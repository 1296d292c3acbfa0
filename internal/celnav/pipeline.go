package celnav

// Worksheet is the full input set for one sight. Observation and Position
// stay nil until they are known.
type Worksheet struct {
	Reading     SextantReading
	Observation *Observation
	Position    *Position
}

// Computable reports whether the worksheet has everything Reduce needs.
func (w Worksheet) Computable() bool {
	return w.Observation != nil && w.Position != nil
}

// Result is everything derived from a worksheet.
type Result struct {
	Corrections Corrections
	Reduction   Reduction
	Intercept   Intercept
	LOP         LineOfPosition
}

// Reduce runs the whole pipeline: altitude corrections, sight reduction,
// intercept and line of position. It returns ErrInsufficientData and a zero
// Result when the worksheet is incomplete.
func Reduce(w Worksheet) (Result, error) {
	corr, err := CorrectSextantReading(w.Reading, w.Observation, w.Position)
	if err != nil {
		return Result{}, err
	}

	red := ReduceSight(*w.Observation, *w.Position)
	icpt := ComputeIntercept(corr.Ho, red.Hc)
	lop := ComputeLineOfPosition(*w.Position, red.Zn, icpt.Distance)

	return Result{
		Corrections: corr,
		Reduction:   red,
		Intercept:   icpt,
		LOP:         lop,
	}, nil
}
