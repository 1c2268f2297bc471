package format

import (
	"encoding/json"

	"github.com/funvibe/flowtype/internal/solver"
)

// jsonAnnotation is the wire shape for one TypeAnnotation; Type itself
// (an interface) is never marshaled directly, only its deterministic
// TypeString form, so two structurally equal types serialize identically.
type jsonAnnotation struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Offset   int    `json:"offset"`
	EndLine  int    `json:"end_line"`
	EndCol   int    `json:"end_column"`
	EndOff   int    `json:"end_offset"`
	NodeType string `json:"node_type"`
	Name     string `json:"name,omitempty"`
	Type     string `json:"type"`
	Kind     string `json:"kind"`
}

type jsonError struct {
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	NodeType string `json:"node_type,omitempty"`
}

type jsonWarning struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

type jsonResult struct {
	Annotations []jsonAnnotation `json:"annotations"`
	Errors      []jsonError      `json:"errors"`
	Warnings    []jsonWarning    `json:"warnings"`
	CFGStats    jsonStats        `json:"cfg_stats"`
}

type jsonStats struct {
	Blocks     int  `json:"blocks"`
	Edges      int  `json:"edges"`
	BackEdges  int  `json:"back_edges"`
	Functions  int  `json:"functions"`
	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
}

// JSON renders an inference Result as structured JSON, the
// form a language-server or editor plugin would consume instead of the
// human report.
func JSON(res solver.Result, indent bool) (string, error) {
	out := jsonResult{
		Annotations: make([]jsonAnnotation, 0, len(res.Annotations)),
		Errors:      make([]jsonError, 0, len(res.Errors)),
		Warnings:    make([]jsonWarning, 0, len(res.Warnings)),
		CFGStats: jsonStats{
			Blocks:     res.Blocks,
			Edges:      res.Edges,
			BackEdges:  res.BackEdges,
			Functions:  res.Functions,
			Iterations: res.Iterations,
			Converged:  res.Converged,
		},
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, jsonWarning{Message: w.Message, Line: w.Line, Column: w.Column})
	}
	for _, a := range res.Annotations {
		out.Annotations = append(out.Annotations, jsonAnnotation{
			Line:     a.Start.Line,
			Column:   a.Start.Column,
			Offset:   a.Start.Offset,
			EndLine:  a.End.Line,
			EndCol:   a.End.Column,
			EndOff:   a.End.Offset,
			NodeType: a.NodeType,
			Name:     a.Name,
			Type:     a.TypeString,
			Kind:     a.Kind.String(),
		})
	}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, jsonError{Message: e.Message, Line: e.Line, Column: e.Column, NodeType: e.NodeType})
	}
	var (
		b   []byte
		err error
	)
	if indent {
		b, err = json.MarshalIndent(out, "", "  ")
	} else {
		b, err = json.Marshal(out)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}
