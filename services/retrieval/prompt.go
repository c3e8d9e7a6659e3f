package retrieval

import (
	"fmt"
	"strings"
)

// NoContextMarker appears in prompts built without any context fragments so
// downstream consumers can tell a grounded answer from a refusal.
const NoContextMarker = "NENHUMA INFORMACAO DISPONIVEL NA BASE DE CONHECIMENTO"

// BuildPrompt assembles a grounded instruction prompt. Fragments appear
// verbatim in retrieval order and the question is included unchanged. With no
// fragments the prompt instructs the model to state that the knowledge base
// has no answer.
func BuildPrompt(question string, fragments []string) string {
	var sb strings.Builder

	if len(fragments) == 0 {
		sb.WriteString("Voce e um assistente da instituicao de ensino.\n\n")
		sb.WriteString("Contexto: ")
		sb.WriteString(NoContextMarker)
		sb.WriteString("\n\n")
		sb.WriteString("Nao ha informacao na base de conhecimento para responder. ")
		sb.WriteString("Informe educadamente que voce nao possui essa informacao e ")
		sb.WriteString("sugira entrar em contato com a secretaria.\n\n")
		fmt.Fprintf(&sb, "Pergunta: %s\n\nResposta:", question)
		return sb.String()
	}

	sb.WriteString("Voce e um assistente da instituicao de ensino. ")
	sb.WriteString("Responda usando somente as informacoes do contexto abaixo. ")
	sb.WriteString("Se o contexto nao contiver a resposta, diga que nao possui essa informacao.\n\n")
	sb.WriteString("Contexto:\n")
	for i, fragment := range fragments {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, fragment)
	}
	fmt.Fprintf(&sb, "\nPergunta: %s\n\nResposta:", question)
	return sb.String()
}
