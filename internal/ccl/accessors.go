package ccl

// ParseModel is the usual entry point: lex text into entries and fold them
// into a Model in one step.
func ParseModel(text string, opts ParserOptions) (*Model, error) {
	entries, err := Parse(text, opts)
	if err != nil {
		return nil, err
	}
	return BuildModel(entries, opts)
}

// GetStr is a convenience for Get(key).AsStr().
func (m *Model) GetStr(key string) (string, error) {
	c, err := m.Get(key)
	if err != nil {
		return "", err
	}
	return c.AsStr()
}

// GetList is a convenience for Get(key).AsList().
func (m *Model) GetList(key string) ([]string, error) {
	c, err := m.Get(key)
	if err != nil {
		return nil, err
	}
	return c.AsList()
}

// Has reports whether m has a direct child named key.
func (m *Model) Has(key string) bool {
	if m.IsSingleton() {
		return false
	}
	_, ok := m.index[key]
	return ok
}
