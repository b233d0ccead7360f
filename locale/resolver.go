package locale

// Resolver looks up locale-keyed tables. The zero value falls back to DefaultCode.
type Resolver struct {
	Default Code
}

// NewResolver returns a Resolver falling back to def, or DefaultCode when def is empty.
func NewResolver(def Code) Resolver {
	return Resolver{Default: def}
}

func (r Resolver) fallback() Code {
	if r.Default == "" {
		return DefaultCode
	}
	return r.Default
}

// Resolve returns table[code] when present, else the default locale's value.
// Codes are matched exactly: "zh-Hant-TW" never falls back to "zh".
func Resolve[M ~map[Code]V, V any](r Resolver, table M, code Code) (V, error) {
	if v, ok := table[code]; ok {
		return v, nil
	}
	def := r.fallback()
	if v, ok := table[def]; ok {
		return v, nil
	}
	var zero V
	return zero, &MissingLocaleDataError{Requested: code, Default: def}
}

// String resolves a localized string.
func (r Resolver) String(table Strings, code Code) (string, error) {
	return Resolve(r, table, code)
}

// Projects resolves a localized project list. A locale that is present with
// no projects resolves to an empty list; it does not fall back.
func (r Resolver) Projects(table ProjectList, code Code) ([]Project, error) {
	projects, err := Resolve(r, table, code)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

// Validate fails when table has no entry for the default locale, which would
// make every unknown locale unresolvable.
func Validate[M ~map[Code]V, V any](r Resolver, table M) error {
	def := r.fallback()
	if _, ok := table[def]; !ok {
		return &MissingLocaleDataError{Requested: def, Default: def}
	}
	return nil
}
