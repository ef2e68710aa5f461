// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"io"
	"time"
)

// StandardObserver implements observability for all pipeline components
type StandardObserver struct {
	level         ObservabilityLevel
	writer        io.Writer
	runID         string
	DebugObserver *DebugObserver // Reference to debug observer when in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates observability component
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	return &StandardObserver{
		level:  level,
		writer: writer,
		runID:  "run-" + time.Now().Format("20060102-150405"),
	}
}

// StartTiming returns a function to complete timing for one operation over
// one document
func (o *StandardObserver) StartTiming(component, operation, docPath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		duration := time.Since(start)

		data := ObservabilityData{
			Component:  component,
			Operation:  operation,
			DocPath:    docPath,
			DurationMs: duration.Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		}

		o.LogOperation(data)
	}
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data ObservabilityData) {
	if o.level == ObservabilityOff {
		return
	}

	data.RunID = o.runID

	// Only log JSON in debug mode
	if o.level == ObservabilityDebug {
		json.NewEncoder(o.writer).Encode(data)
	}
}

// Detail forwards a document-level detail line to the debug observer when
// one is attached; outside debug mode it is a no-op
func (o *StandardObserver) Detail(component, message string) {
	if o.DebugObserver != nil {
		o.DebugObserver.LogDetail(component, message)
	}
}

// ObservabilityData describes one pipeline operation event
type ObservabilityData struct {
	Component    string                 `json:"component"`
	Operation    string                 `json:"operation"`
	RunID        string                 `json:"run_id"`
	DocPath      string                 `json:"doc_path,omitempty"`
	Label        string                 `json:"label,omitempty"`
	DurationMs   int64                  `json:"duration_ms,omitempty"`
	Success      bool                   `json:"success"`
	Error        string                 `json:"error,omitempty"`
	MentionCount int                    `json:"mention_count,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}
