package runner

import "errors"

// Outcome is the result of processing one item.
type Outcome[T any] struct {
	// Item is the input, typically a file path.
	Item string

	// Value is the value returned for Item. It is the zero value when Err
	// is set.
	Value T

	// Err is set if Item could not be processed.
	Err error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// Items is the number of items submitted.
	Items int

	// Processed is the number of items processed without error.
	Processed int

	// Errored is the number of items that failed.
	Errored int
}

// Result is the overall runner result.
type Result[T any] struct {
	// Outcomes are in input order. Items not reached before cancellation
	// are missing.
	Outcomes []Outcome[T]

	Stats Stats
}

// Err joins the errors of all failed outcomes.
func (r *Result[T]) Err() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// Values returns the values of the successful outcomes in input order.
func (r *Result[T]) Values() []T {
	if r == nil {
		return nil
	}
	out := make([]T, 0, r.Stats.Processed)
	for _, o := range r.Outcomes {
		if o.Err == nil {
			out = append(out, o.Value)
		}
	}
	return out
}

func (r *Result[T]) accumulate(o Outcome[T]) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Err != nil {
		r.Stats.Errored++
		return
	}
	r.Stats.Processed++
}
