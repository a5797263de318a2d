package chatbot

// Tool names
const (
	ToolMatchScores     = "return_match_scores"
	ToolMatchPrediction = "match_prediction"
)

func object(properties map[string]interface{}, required ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func typed(t string) map[string]interface{} {
	return map[string]interface{}{"type": t}
}

func described(t, description string) map[string]interface{} {
	return map[string]interface{}{"type": t, "description": description}
}

// MatchScoresTool returns the tool the model calls to return job relevance scores
func MatchScoresTool() Tool {
	score := object(map[string]interface{}{
		"job_id":         typed("string"),
		"score":          typed("integer"),
		"matched_skills": map[string]interface{}{"type": "array", "items": typed("string")},
		"explanation":    typed("string"),
	}, "job_id", "score", "matched_skills", "explanation")
	score["additionalProperties"] = false

	params := object(map[string]interface{}{
		"scores": map[string]interface{}{
			"type":  "array",
			"items": score,
		},
	}, "scores")
	params["additionalProperties"] = false

	return Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        ToolMatchScores,
			Description: "Return match scores for jobs against resume",
			Parameters:  params,
		},
	}
}

// MatchPredictionTool returns the tool the model calls to return a structured football match prediction
func MatchPredictionTool() Tool {
	pair := func() map[string]interface{} {
		return object(map[string]interface{}{
			"team1": typed("number"),
			"team2": typed("number"),
		}, "team1", "team2")
	}
	player := func() map[string]interface{} {
		return object(map[string]interface{}{
			"name":     typed("string"),
			"position": typed("string"),
			"reason":   typed("string"),
		}, "name", "position", "reason")
	}

	params := object(map[string]interface{}{
		"winner": described("string", "Predicted winner team name or 'Draw'"),
		"winProbability": object(map[string]interface{}{
			"team1": typed("number"),
			"draw":  typed("number"),
			"team2": typed("number"),
		}, "team1", "draw", "team2"),
		"possession":     pair(),
		"passes":         pair(),
		"shots":          pair(),
		"shotsOnTarget":  pair(),
		"predictedScore": pair(),
		"bestPlayer": object(map[string]interface{}{
			"team1": player(),
			"team2": player(),
		}, "team1", "team2"),
		"analysis": described("string", "Brief match analysis explaining predictions"),
	}, "winner", "winProbability", "possession", "passes", "shots", "shotsOnTarget", "predictedScore", "bestPlayer", "analysis")
	params["additionalProperties"] = false

	return Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        ToolMatchPrediction,
			Description: "Return structured football match prediction",
			Parameters:  params,
		},
	}
}
