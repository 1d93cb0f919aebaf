package pilot

import "strings"

// Persona is the fixed preamble of every system prompt.
const Persona = `Tu es l'assistant IA du projet B2B ISFEC AFAREC IdF.

CONTEXTE :
- L'ISFEC est un institut de formation de l'Enseignement catholique
- Un projet de développement B2B (formation entreprises) est en cours
- Tu as accès aux études de marché V1 et V2
- L'utilisatrice est la responsable du projet

TON RÔLE :
- Répondre aux questions sur les études
- Aider à comprendre les analyses et recommandations
- Guider dans les décisions à prendre
- Expliquer les concepts (OPCO, Qualiopi, etc.)

STYLE :
- Professionnel mais accessible
- Concis (pas de réponses trop longues)
- Cite les sections pertinentes quand c'est utile
- Si tu ne sais pas, dis-le`

// BuildSystemPrompt assembles the system prompt from the persona, the
// caller's page annotation, and the user's checklist answers in the order
// given. Empty annotation and responses are omitted.
func BuildSystemPrompt(annotation string, responses []*ChecklistResponse) string {
	var sb strings.Builder
	sb.WriteString(Persona)

	if annotation != "" {
		sb.WriteString("\n\nCONTEXTE ACTUEL : ")
		sb.WriteString(annotation)
	}

	if len(responses) > 0 {
		sb.WriteString("\n\nÉTAT DE LA CHECKLIST :")
		for _, r := range responses {
			sb.WriteString("\n")
			sb.WriteString(r.FieldID)
			sb.WriteString(": ")
			sb.WriteString(r.Value.String())
		}
	}

	return sb.String()
}
