// Package schemas embeds the JSON Schemas that guard every provider response.
package schemas

import "embed"

// Schema file names.
const (
	QuestionSet = "question_set.schema.json"
	Evaluation  = "evaluation.schema.json"
)

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
