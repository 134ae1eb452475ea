//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"shastra/internal/adapter/analyzer"
)

// Browser demo of the query-analysis logic: score questions and preview
// how many sources retrieval would use, without any backend.

var scorer *analyzer.ComplexityScorer

func init() {
	scorer = analyzer.NewComplexityScorer(5, 15)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("shastraScore", js.FuncOf(scoreQuery))
	js.Global().Set("shastraPlan", js.FuncOf(planQuery))
	js.Global().Set("shastraCategorize", js.FuncOf(categorizeName))

	<-c
}

func scoreQuery(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: shastraScore(query)")
	}
	query := args[0].String()
	return makeResult(map[string]interface{}{
		"query": query,
		"score": scorer.Score(query),
	})
}

func planQuery(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: shastraPlan(query, [limit])")
	}
	query := args[0].String()
	target := scorer.TargetSources(query)
	if len(args) > 1 && args[1].Int() != 0 {
		target = scorer.Clamp(args[1].Int())
	}
	return makeResult(map[string]interface{}{
		"query":   query,
		"score":   scorer.Score(query),
		"sources": target,
	})
}

func categorizeName(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: shastraCategorize(name)")
	}
	name := args[0].String()
	return makeResult(map[string]interface{}{
		"name":     name,
		"category": analyzer.Categorize(name),
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
