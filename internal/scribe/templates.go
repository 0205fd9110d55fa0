package scribe

import dErrors "scribed/internal/domainerrors"

// Exactly two languages are supported; anything else fails closed before any
// collaborator call is made.
const (
	LanguageFrench  = "fr"
	LanguageEnglish = "en"
)

// ValidateLanguage rejects unsupported language codes as invalid input.
func ValidateLanguage(language string) error {
	switch language {
	case LanguageFrench, LanguageEnglish:
		return nil
	default:
		return dErrors.Newf(dErrors.CodeInvalidInput, "unsupported language %q", language)
	}
}

// Instruction templates per extraction task, keyed by language. The wording
// mirrors the clinical documentation guidance the service was deployed with.
var (
	chiefComplaintInstruction = map[string]string{
		LanguageFrench:  "Vous êtes un assistant clinique bilingue (FR/EN). Extraire la plainte principale en 1-2 phrases.",
		LanguageEnglish: "You are a bilingual clinical assistant (EN/FR). Extract the chief complaint in 1-2 short sentences.",
	}
	hpiInstruction = map[string]string{
		LanguageFrench: "Vous êtes un assistant clinique bilingue. Extraire l'HPI structuré: début, localisation, durée, qualité, " +
			"sévérité, facteurs, symptômes associés. Fournir en puces.",
		LanguageEnglish: "You are a bilingual clinical assistant. Extract HPI structured into: onset, location, duration, quality, " +
			"severity, modifying factors, associated symptoms. Provide bullet points.",
	}
	assessmentPlanInstruction = map[string]string{
		LanguageFrench:  "Vous êtes un assistant clinique bilingue. Résumer l'Assessment & Plan brièvement, adapté à l'EMR.",
		LanguageEnglish: "You are a bilingual clinical assistant. Summarize Assessment & Plan briefly and clearly for EMR insertion.",
	}
	assembleInstruction = map[string]string{
		LanguageFrench: "Vous êtes un rédacteur médical bilingue produisant une note clinique pour la santé sexuelle au Québec. " +
			"Respectez les meilleures pratiques et n'incluez pas d'identifiants patients.",
		LanguageEnglish: "You are a bilingual medical scribe creating a clinical note for sexual health in Québec. " +
			"Follow documentation best practices and do NOT include patient identifiers.",
	}
)
