package generator

import (
	"fmt"
	"strings"

	"github.com/JesusVicken/brain-school/internal/domain"
)

const jsonFormat = `{
  "questions": [
    {
      "question": "Texto da pergunta.",
      "options": ["Opção Correta", "Opção Incorreta", "Opção Incorreta", "Opção Incorreta"],
      "correctAnswer": 0
    }
  ]
}`

const systemPromptText = `Você é um especialista em criar questões educacionais a partir de um texto-fonte.
Sua única tarefa é criar um quiz em formato JSON a partir do TEXTO-FONTE fornecido.
REGRAS ESTRITAS:
1. Sua resposta deve ser APENAS um objeto JSON válido, sem nenhum texto fora dele.
2. O formato do JSON deve ser exatamente: ` + jsonFormat + `
3. Crie questões que sejam DIRETAMENTE baseadas no conteúdo do TEXTO-FONTE. Não invente informações.
4. A primeira opção ("options"[0]) deve ser SEMPRE a resposta correta ("correctAnswer": 0).`

const systemPromptTheme = `Você é um professor especialista em criar questões educacionais para estudantes brasileiros.
Sua única tarefa é criar um quiz em formato JSON sobre um TEMA específico.
REGRAS ESTRITAS:
1. Sua resposta deve ser APENAS um objeto JSON válido, sem nenhum texto fora dele.
2. O formato do JSON deve ser exatamente: ` + jsonFormat + `
3. Crie questões relevantes e precisas sobre o TEMA solicitado.
4. A primeira opção ("options"[0]) deve ser SEMPRE a resposta correta ("correctAnswer": 0).`

// BuildPrompt assembles the system and user prompts for a setup. Subject,
// difficulty, question count, and the theme or source text pass through
// verbatim. Building a prompt never fails; the caller validated the setup.
func BuildPrompt(s domain.QuizSetupData) (system, user string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Disciplina de Contexto: %s\n", s.Subject))
	sb.WriteString(fmt.Sprintf("Nível de Dificuldade: %s\n", s.Difficulty.Label()))
	sb.WriteString(fmt.Sprintf("Número de Questões: %d\n\n", s.NumberOfQuestions))

	if s.GenerationType == domain.TypeText {
		sb.WriteString("TEXTO-FONTE:\n---\n")
		sb.WriteString(s.SourceText)
		sb.WriteString("\n---\n\nGere o quiz em JSON com base no TEXTO-FONTE acima.")
		return systemPromptText, sb.String()
	}

	sb.WriteString("TEMA:\n---\n")
	sb.WriteString(s.Theme)
	sb.WriteString("\n---\n\nGere o quiz em JSON sobre o TEMA acima.")
	return systemPromptTheme, sb.String()
}
