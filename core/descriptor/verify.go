package descriptor

import (
	"fmt"
	"strconv"
	"strings"

	"source-resolver/core/attribute"
	"source-resolver/core/blob"
	"source-resolver/core/mapping"
	"source-resolver/core/verify"
)

// Verify checks the descriptor without touching storage.
func (s *Source) Verify() verify.Report {
	var r verify.Report

	if strings.TrimSpace(s.Name) == "" {
		r.Add(verify.SeverityError, verify.PhaseDescriptor, "source 'name' must not be blank")
	}
	if len(s.Readers) == 0 {
		r.Add(verify.SeverityError, verify.PhaseDescriptor, "source must have at least one reader")
	}

	r.Merge(s.Storage.Verify())

	labels := make(map[string]int)
	for _, rd := range s.Readers {
		if rd.Label != "" {
			labels[rd.Label]++
		}
	}
	for _, rd := range s.Readers {
		if n := labels[rd.Label]; n > 1 {
			r.Add(verify.SeverityWarning, verify.PhaseDescriptor,
				fmt.Sprintf("duplicate reader label %q: table names may collide", rd.Label),
				"label", rd.Label)
			labels[rd.Label] = 0
		}
	}

	if s.Table != nil {
		r.Merge(s.Table.Verify("source"))
	}

	for i, rd := range s.Readers {
		where := "reader[" + strconv.Itoa(i) + "]"
		if strings.TrimSpace(rd.Type) == "" {
			r.Add(verify.SeverityError, verify.PhaseReader, where+": 'type' must not be blank",
				"readerIndex", strconv.Itoa(i))
		}
		t := s.EffectiveTable(rd)
		if t == nil || t.Mapping == nil {
			r.Add(verify.SeverityError, verify.PhaseDescriptor,
				fmt.Sprintf("%s (type=%q) has no table mapping and no source-level default is defined", where, rd.Type),
				"readerIndex", strconv.Itoa(i), "readerType", rd.Type)
		}
		if rd.Table != nil {
			r.Merge(rd.Table.Verify(where))
		}
	}
	return r
}

// Verify checks the storage settings.
func (s Storage) Verify() verify.Report {
	var r verify.Report
	kind, err := s.Kind()
	if err != nil {
		r.Add(verify.SeverityError, verify.PhaseStorage, err.Error())
		return r
	}
	switch kind {
	case blob.KindLocal:
		if strings.TrimSpace(s.RootPath) == "" {
			r.Add(verify.SeverityError, verify.PhaseStorage, "local storage requires 'rootPath'")
		}
	case blob.KindS3:
		if strings.TrimSpace(s.Bucket) == "" {
			r.Add(verify.SeverityError, verify.PhaseStorage, "s3 storage requires 'bucket'")
		}
	}
	return r
}

// Verify checks the mapping and attributes. where prefixes messages.
func (t *Table) Verify(where string) verify.Report {
	var r verify.Report
	if t.Mapping != nil {
		m, err := t.Mapping.Build()
		if err != nil {
			r.Add(verify.SeverityError, verify.PhaseTableMapping, where+": "+err.Error(),
				"mappingType", t.Mapping.Kind)
		} else if re, ok := m.(*mapping.Regex); ok && !re.HasGroup() {
			r.Add(verify.SeverityError, verify.PhaseTableMapping,
				fmt.Sprintf("%s: regex pattern does not contain named group %q", where, re.Group()),
				"pattern", t.Mapping.Pattern, "expectedGroup", re.Group())
		}
	}
	seen := make(map[string]bool, len(t.Attributes))
	for _, a := range t.Attributes {
		if seen[a.Name] {
			r.Add(verify.SeverityError, verify.PhaseDescriptor,
				fmt.Sprintf("%s: duplicate attribute %q", where, a.Name), "attributeName", a.Name)
		}
		seen[a.Name] = true
		if _, err := attribute.NewExtractor([]attribute.Descriptor{a}); err != nil {
			r.Add(verify.SeverityError, verify.PhaseDescriptor, where+": "+err.Error(),
				"attributeName", a.Name)
		}
	}
	return r
}
