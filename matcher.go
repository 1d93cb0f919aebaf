package pilot

import (
	"context"
	"strings"
)

// Ensure Matcher implements Responder at compile time.
var _ Responder = (*Matcher)(nil)

// Rule pairs a set of keywords with a canned response.
type Rule struct {
	Keywords []string
	Response string
}

// matches reports whether any keyword occurs in the lowercased message.
func (r Rule) matches(lower string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Matcher answers messages offline from an ordered table of keyword rules.
// The first rule with a keyword occurring in the message wins; when none
// matches, Default is returned. A Matcher performs no I/O.
type Matcher struct {
	Rules   []Rule
	Default string
}

// NewMatcher returns a Matcher over DefaultRules and DefaultResponse.
func NewMatcher() *Matcher {
	return &Matcher{Rules: DefaultRules, Default: DefaultResponse}
}

// Match returns the first rule matching message.
func (m *Matcher) Match(message string) (Rule, bool) {
	lower := strings.ToLower(message)
	for _, rule := range m.Rules {
		if rule.matches(lower) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Respond returns the response of the first matching rule, or Default.
// History and system prompt are ignored.
func (m *Matcher) Respond(_ context.Context, message string, _ []*Message, _ string) string {
	if rule, ok := m.Match(message); ok {
		return rule.Response
	}
	return m.Default
}

// DefaultRules are the canned responses of the offline assistant.
var DefaultRules = []Rule{
	{
		Keywords: []string{"opco", "financement"},
		Response: `Les OPCO (Opérateurs de Compétences) sont des organismes qui financent la formation professionnelle. Pour l'ISFEC, les principaux OPCO ciblés sont :

- **AKTO** : OPCO du réseau EC (OGEC), déjà partenaire
- **Uniformation** : Pour l'ESS et les associations
- **OPCO Santé** : Pour le médico-social

L'avantage est que les entreprises peuvent financer leurs formations via ces OPCO, ce qui facilite la décision d'achat.`,
	},
	{
		Keywords: []string{"objectif", "ca", "chiffre"},
		Response: `Les objectifs de CA du projet B2B sont :

- **Année 1** : 150 000 € (phase de lancement)
- **Année 2** : 350 000 € (croissance)
- **Année 3** : 700 000 € (consolidation)

Ces objectifs sont basés sur un funnel commercial réaliste et une montée en charge progressive des actions commerciales.`,
	},
	{
		Keywords: []string{"segment", "cible", "marché"},
		Response: `La V2 de l'étude propose une segmentation ambitieuse :

- **ESS non-EC** (37% du CA cible) : Associations, fondations, mutuelles
- **Médico-social** (26%) : EHPAD, établissements de santé
- **PME services** (29%) : Entreprises de services 10-50 salariés
- **Réseau EC** (9%) : OGEC, établissements scolaires catholiques

L'objectif est d'atteindre 65% du CA hors réseau EC à 3 ans.`,
	},
	{
		Keywords: []string{"qualiopi", "certification"},
		Response: `**Qualiopi** est la certification qualité obligatoire pour les organismes de formation souhaitant bénéficier de fonds publics ou mutualisés.

L'ISFEC est déjà certifié Qualiopi, ce qui est un atout majeur pour le développement B2B car :
- Les clients peuvent faire financer leurs formations par leur OPCO
- C'est un gage de qualité pour les entreprises
- Cela ouvre l'accès aux marchés publics`,
	},
	{
		Keywords: []string{"priorité", "action", "prochaine"},
		Response: `D'après l'analyse de votre checklist et des études, voici les priorités :

1. **Valider le budget de lancement** (45 000 € recommandés)
2. **Nommer le responsable opérationnel** du projet
3. **Choisir l'organisation commerciale** (option A, B ou C)
4. **Fixer la date de lancement** (M1)

Ces décisions sont critiques car elles conditionnent tout le reste du planning.`,
	},
}

// DefaultResponse is returned when no rule matches.
const DefaultResponse = `Je suis l'assistant IA du projet B2B ISFEC. Je peux vous aider à :

- Comprendre les études de marché V1 et V2
- Expliquer les concepts (OPCO, Qualiopi, segments cibles...)
- Identifier les priorités et prochaines actions
- Répondre à vos questions sur le projet

N'hésitez pas à me poser une question précise !`
