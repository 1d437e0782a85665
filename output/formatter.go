// Package output provides different formats of output for experiments.
package output

import (
	"encoding/json"
	"fmt"
)

// EvaluationFormatter formats the evaluation results of a manifold
// experiment. The outer map is keyed by model name, the inner map by
// evaluation measure.
type EvaluationFormatter func(map[string]map[string]float64) (string, error)

// JSONEvaluationFormatter outputs results in a JSON format.
func JSONEvaluationFormatter(results map[string]map[string]float64) (string, error) {
	v, err := json.MarshalIndent(results, "", "    ")
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// AccuracyReportFormatter formats the test-set accuracy of the raw-feature
// model and the embedding-augmented model as two fixed report lines with
// three decimal places.
func AccuracyReportFormatter(rawModel, embeddedModel string) EvaluationFormatter {
	return func(results map[string]map[string]float64) (string, error) {
		raw, ok := results[rawModel]
		if !ok {
			return "", fmt.Errorf("output: no evaluation for model %s", rawModel)
		}
		embedded, ok := results[embeddedModel]
		if !ok {
			return "", fmt.Errorf("output: no evaluation for model %s", embeddedModel)
		}
		rawAcc, ok := raw["Accuracy"]
		if !ok {
			return "", fmt.Errorf("output: model %s has no accuracy score", rawModel)
		}
		embAcc, ok := embedded["Accuracy"]
		if !ok {
			return "", fmt.Errorf("output: model %s has no accuracy score", embeddedModel)
		}
		return fmt.Sprintf("Accuracy on the test set with raw data: %.3f\nAccuracy on the test set with UMAP transformation: %.3f",
			rawAcc, embAcc), nil
	}
}
