// Package schemas holds the JSON Schemas for the artifacts the tool writes.
package schemas

import "embed"

// SkillGapReportFile is the schema for a serialized skill-gap report.
const SkillGapReportFile = "skill_gap_report.schema.json"

// FS contains every schema in this directory.
//
//go:embed *.schema.json
var FS embed.FS
