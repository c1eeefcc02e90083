package neurarrow

import (
	"github.com/neurarrow/neurarrow-go/i18n"
	eng "github.com/neurarrow/neurarrow-go/internal/engine"
)

// Check reports whether tv conforms to fs under mode. It returns nil on
// success and Issues otherwise. Issue order is deterministic: duplicate
// names, required fields (declared order), optional then derived fields,
// metadata keys (table order), missing required metadata (declared order),
// and finally undeclared fields in strict mode.
//
// Duplicate column names stop the check because name lookups are ambiguous.
func Check(tv TableView, fs *FormatSchema, mode Mode, opts ...CheckOpt) error {
	if mode == ModeSkip || fs == nil {
		return nil
	}
	c := &checker{tv: tv, fs: fs, mode: mode, opt: lastOpt(opts)}
	c.run()
	if len(c.iss) > 0 {
		return c.iss
	}
	return nil
}

// Conforms is the predicate form of Check.
func Conforms(tv TableView, fs *FormatSchema, mode Mode) bool {
	return Check(tv, fs, mode, CheckOpt{FailFast: true}) == nil
}

type checker struct {
	tv   TableView
	fs   *FormatSchema
	mode Mode
	opt  CheckOpt

	byName map[string]Column
	iss    Issues
}

// add records an issue and reports whether checking should stop.
func (c *checker) add(it Issue) bool {
	c.iss = AppendIssues(c.iss, it)
	return c.opt.FailFast
}

func (c *checker) run() {
	if c.duplicates() {
		return
	}
	c.byName = make(map[string]Column, len(c.tv.Columns))
	for _, col := range c.tv.Columns {
		c.byName[col.Name] = col
	}
	steps := []func() bool{c.requiredFields, c.otherFields, c.metadata, c.missingMetadata}
	if c.mode == ModeStrict {
		steps = append(steps, c.unexpectedFields)
	}
	for _, step := range steps {
		if step() {
			return
		}
	}
}

// duplicates reports whether any duplicate column name was found.
func (c *checker) duplicates() bool {
	limit := 0
	if c.opt.FailFast {
		limit = 1
	}
	dups := eng.DetectDuplicateNames(c.tv.ColumnNames(), limit)
	for _, d := range dups {
		c.add(IssueAt(FieldsPath().Field(d.Name), CodeDuplicateField, i18n.T(CodeDuplicateField, map[string]string{"name": d.Name}),
			map[string]any{"name": d.Name, "indices": d.Indices}))
	}
	return len(dups) > 0
}

func (c *checker) compare(want Column) bool {
	got, ok := c.byName[want.Name]
	if !ok || got.Equal(want) {
		return false
	}
	it := IssueAt(FieldsPath().Field(want.Name), CodeFieldTypeMismatch, i18n.T(CodeFieldTypeMismatch, map[string]string{"name": want.Name}),
		map[string]any{"name": want.Name, "expected": want.String(), "actual": got.String()})
	it.Hint = "expected " + want.String()
	return c.add(it)
}

func (c *checker) requiredFields() bool {
	for _, want := range c.fs.required {
		if _, ok := c.byName[want.Name]; !ok {
			it := FieldsPath().Field(want.Name).Issue(CodeMissingRequiredField, i18n.T(CodeMissingRequiredField, map[string]string{"name": want.Name}),
				"name", want.Name, "expected", want.String())
			if c.add(it) {
				return true
			}
			continue
		}
		if c.compare(want) {
			return true
		}
	}
	return false
}

func (c *checker) otherFields() bool {
	for _, cols := range [][]Column{c.fs.optional, c.fs.derived} {
		for _, want := range cols {
			if c.compare(want) {
				return true
			}
		}
	}
	return false
}

func (c *checker) metadata() bool {
	md := c.tv.Metadata
	for i := 0; i < md.Len(); i++ {
		key, value := md.At(i)
		if IsAttrKey(key) {
			continue
		}
		p := MetadataPath().Field(key)
		rule, _, ok := c.fs.lookupMeta(key)
		if !ok {
			if c.mode == ModeStrict {
				if c.add(p.Issue(CodeUnexpectedMetadataKey, i18n.T(CodeUnexpectedMetadataKey, map[string]string{"name": key}), "key", key)) {
					return true
				}
			}
			continue
		}
		if err := ApplyValidate(rule.Validator, key, value); err != nil {
			it := p.Issue(CodeMetadataValidationFailed, i18n.T(CodeMetadataValidationFailed, map[string]string{"name": key}),
				"key", key, "value", value)
			it.Cause = err
			if reason := CauseCode(it); reason != "" {
				it.Params["reason"] = reason
				it.Hint = i18n.T(reason, nil)
			} else {
				it.Hint = err.Error()
			}
			if c.add(it) {
				return true
			}
		}
	}
	return false
}

func (c *checker) missingMetadata() bool {
	md := c.tv.Metadata
	for _, rule := range c.fs.requiredMeta {
		present := false
		for i := 0; i < md.Len() && !present; i++ {
			key, _ := md.At(i)
			present = rule.Matches(key)
		}
		if present {
			continue
		}
		it := MetadataPath().Field(rule.Key).Issue(CodeMissingRequiredMetadata, i18n.T(CodeMissingRequiredMetadata, map[string]string{"name": rule.Key}),
			"key", rule.Key)
		if c.add(it) {
			return true
		}
	}
	return false
}

func (c *checker) unexpectedFields() bool {
	extra := eng.Unaccounted(c.tv.ColumnNames(), func(name string) bool {
		if IsAttrKey(name) {
			return true
		}
		_, ok := c.fs.Field(name)
		return ok
	})
	if len(extra) == 0 {
		return false
	}
	return c.add(FieldsPath().Issue(CodeUnexpectedFields, i18n.T(CodeUnexpectedFields, nil), "fields", extra))
}
