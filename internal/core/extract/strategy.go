package extract

// Strategy is one way of recognizing a value in a document.
// It reports false when the document does not carry the value in the form it looks for.
type Strategy[T any] func(doc *Document) (T, bool)

// firstOf composes strategies into one that returns the first recognized value.
func firstOf[T any](strategies ...Strategy[T]) Strategy[T] {
	return func(doc *Document) (T, bool) {
		for _, s := range strategies {
			if v, ok := s(doc); ok {
				return v, true
			}
		}
		var zero T
		return zero, false
	}
}

func optional[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}
