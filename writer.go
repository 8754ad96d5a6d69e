// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// Tell, StructuredLog and Listen are the writer effects (§4.2, §6): answered
// directly against the run's shared Store-backed log buffer (the reserved
// writer-log slot) rather than through user handler dispatch, the same
// VM-native treatment as Get/Put/Modify and Ask/Local.

// Tell appends Value to the run's accumulated writer log.
type Tell struct{ Value any }

// StructuredLog appends a structured field set, for callers that want a
// shaped log entry instead of an arbitrary value (§6 domain logging).
type StructuredLog struct{ Fields map[string]any }

// Listen runs Body and returns a ListenResult pairing its value with
// exactly the log entries appended during Body's own evaluation (§4.2
// "Listen propagates inner log to both the outer buffer and its own
// ListenResult" — the entries are not removed from the outer log).
type Listen struct{ Body Program }

// TellValue performs Tell for v.
func TellValue(v any) Program { return performEffect(Tell{Value: v}) }

// LogFields performs StructuredLog for fields.
func LogFields(fields map[string]any) Program {
	return performEffect(StructuredLog{Fields: fields})
}

// WithListen performs Listen over body.
func WithListen(body Program) Program {
	return performEffect(Listen{Body: body})
}

func dispatchTell(t *taskState, v any) Program {
	log := sliceOf[any](t.store, reservedKeyWriterLog)
	*log = append(*log, v)
	return PureProgram(struct{}{})
}

func dispatchStructuredLog(t *taskState, fields map[string]any) Program {
	log := sliceOf[any](t.store, reservedKeyWriterLog)
	*log = append(*log, fields)
	return PureProgram(struct{}{})
}
