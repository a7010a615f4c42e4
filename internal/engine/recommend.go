package engine

import "github.com/respicare/triage-engine/internal/domain"

// recommendations per urgency tier, shown to the user alongside the
// hypothesis.
var recommendations = map[domain.UrgencyLevel]string{
	domain.UrgencyCritical: "Buscar atención médica de EMERGENCIA inmediatamente. " +
		"Esta es una situación que requiere atención médica de URGENCIA.",
	domain.UrgencyHigh: "Buscar atención médica URGENTE en las próximas horas. " +
		"No demores en buscar ayuda profesional.",
	domain.UrgencyMedium: "Programar cita médica dentro de las próximas 24 horas. " +
		"Monitorea los síntomas y si empeoran, busca atención antes.",
	domain.UrgencyLow: "Puedes monitorear los síntomas en casa, pero si persisten " +
		"por más de 3 días o empeoran, consulta con un médico.",
}

// recommendationFor returns the action guidance for an urgency tier.
func recommendationFor(urgency domain.UrgencyLevel) string {
	if r, ok := recommendations[urgency]; ok {
		return r
	}
	return recommendations[domain.UrgencyLow]
}
