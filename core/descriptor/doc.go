// Package descriptor defines the declarative source configuration and
// loads it from YAML.
//
// A source descriptor names one storage, an optional default table
// configuration, a conflict policy and an ordered list of readers:
//
//	name: airlines
//	storage:
//	  type: local
//	  rootPath: /data/airlines
//	table:
//	  mapping:
//	    type: regex
//	    pattern: '(?<table>[^/]+)\.csv$'
//	conflicts: reject
//	readers:
//	  - type: csv
//	    label: raw
//	    format:
//	      delimiter: ","
//
// Enumerations are case-insensitive. A mapping may use "kind" instead of
// "type". The conflicts key takes a bare strategy or an object with a
// default and per-table rules. The reader format node is kept raw and
// decoded later by the format registry of the reader's type.
//
// Verify performs static checks and returns a report instead of failing on
// the first problem.
package descriptor
