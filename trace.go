// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// graphNode is one recorded entry in the run's execution graph (§6): a
// named step, or an annotation attached to the most recently recorded step.
type graphNode struct {
	Label       string
	Annotations map[string]any
}

// TraceStepEffect records a named step in the run's execution graph.
type TraceStepEffect struct{ Label string }

// TraceAnnotateEffect attaches a key/value annotation to the most recently
// recorded step; annotating before any step exists creates an unlabeled one.
type TraceAnnotateEffect struct {
	Key   string
	Value any
}

// TraceSnapshotEffect captures the run's execution graph as recorded so far.
type TraceSnapshotEffect struct{}

// TraceStep performs TraceStepEffect for label.
func TraceStep(label string) Program { return performEffect(TraceStepEffect{Label: label}) }

// TraceAnnotate performs TraceAnnotateEffect for key/value.
func TraceAnnotate(key string, value any) Program {
	return performEffect(TraceAnnotateEffect{Key: key, Value: value})
}

// CaptureGraph performs TraceSnapshotEffect, yielding a []graphNode snapshot
// safe to inspect after the run.
func CaptureGraph() Program { return performEffect(TraceSnapshotEffect{}) }

func dispatchTraceStep(t *taskState, e TraceStepEffect) Program {
	graph := sliceOf[graphNode](t.store, reservedKeyGraph)
	*graph = append(*graph, graphNode{Label: e.Label})
	return PureProgram(struct{}{})
}

func dispatchTraceAnnotate(t *taskState, e TraceAnnotateEffect) Program {
	graph := sliceOf[graphNode](t.store, reservedKeyGraph)
	if len(*graph) == 0 {
		*graph = append(*graph, graphNode{})
	}
	last := &(*graph)[len(*graph)-1]
	if last.Annotations == nil {
		last.Annotations = make(map[string]any)
	}
	last.Annotations[e.Key] = e.Value
	return PureProgram(struct{}{})
}

func dispatchTraceSnapshot(t *taskState) Program {
	graph := sliceOf[graphNode](t.store, reservedKeyGraph)
	snap := append([]graphNode(nil), *graph...)
	return PureProgram(snap)
}
