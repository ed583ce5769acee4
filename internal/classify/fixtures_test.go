package classify_test

import (
	"encoding/json"
	"strings"
)

func validPayload(observations string) map[string]any {
	return map[string]any{
		"title":             "Escucha activa para líderes",
		"summary":           "Taller práctico sobre técnicas de escucha.",
		"keyConcepts":       []string{"escucha", "parafraseo", "empatía"},
		"contentType":       "guía",
		"primaryPillar":     "Liderazgo",
		"secondaryPillars":  []string{"Cultura"},
		"sub":               "Comunicación",
		"competence":        "Escucha activa",
		"behavior":          "Parafrasea al interlocutor",
		"maturityLevel":     "intermedio",
		"targetRole":        "Mandos medios",
		"duration":          "2 horas",
		"intervention":      "Taller",
		"moment":            "Formación",
		"language":          "English",
		"format":            "presencial",
		"completenessScore": 85,
		"observations":      observations,
	}
}

func encode(payload map[string]any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func longObservations() string {
	return "Análisis de impacto: " + strings.Repeat("contenido relevante ", 20)
}

func validResponse() string {
	return encode(validPayload(longObservations()))
}
