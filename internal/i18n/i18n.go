// Package i18n holds the UI strings in every supported language.
package i18n

import (
    "errors"
    "fmt"
    "strings"

    "golang.org/x/text/language"
)

// Lang is a supported UI language.
type Lang string

const (
    PT Lang = "pt"
    EN Lang = "en"
    ES Lang = "es"
)

// Default is used when nothing better matches.
const Default = PT

// Langs lists the supported languages; the first is the fallback.
var Langs = []Lang{PT, EN, ES}

var ErrUnknownLang = errors.New("unknown language")

var matcher = language.NewMatcher([]language.Tag{
    language.Portuguese,
    language.English,
    language.Spanish,
})

var translations = map[Lang]map[string]string{
    PT: {
        "settings":       "Configurações",
        "theme":          "Tema",
        "themeLight":     "Claro",
        "themeDark":      "Escuro",
        "language":       "Idioma",
        "title":          "Jogo da Velha",
        "chooseMode":     "Escolha o modo de jogo",
        "twoPlayers":     "2 Jogadores",
        "twoPlayersDesc": "Jogue localmente, alternando entre X e O.",
        "vsCpu":          "Contra a Máquina",
        "vsCpuDesc":      "Desafie a IA com 3 dificuldades.",
        "easy":           "Fácil",
        "medium":         "Médio",
        "hard":           "Difícil",
        "start":          "Começar",
        "save":           "Salvar",
        "rule":           "Regra: cada jogador pode ter no máximo 3 peças; a mais antiga some ao jogar a 4ª.",
        "back":           "Voltar",
        "machine":        "Máquina",
        "playAgain":      "Jogar novamente",
        "restart":        "Reiniciar",
        "draw":           "Empate!",
        "win":            "Vitória de %s!",
        "turn":           "Vez de %s",
        "thinking":       "A máquina está pensando...",
        "localInfo":      "Dois jogadores no mesmo dispositivo",
        "spectator":      "Você está assistindo",
        "errNotYourTurn": "Não é a sua vez",
        "errOccupied":    "Casa ocupada",
        "errOutOfBounds": "Posição inválida",
        "errGameOver":    "O jogo acabou",
        "errInvalid":     "Jogada inválida",
    },
    EN: {
        "settings":       "Settings",
        "theme":          "Theme",
        "themeLight":     "Light",
        "themeDark":      "Dark",
        "language":       "Language",
        "title":          "Tic-Tac-Toe",
        "chooseMode":     "Choose game mode",
        "twoPlayers":     "2 Players",
        "twoPlayersDesc": "Play locally, alternating X and O.",
        "vsCpu":          "Vs Computer",
        "vsCpuDesc":      "Challenge the AI with 3 difficulties.",
        "easy":           "Easy",
        "medium":         "Medium",
        "hard":           "Hard",
        "start":          "Start",
        "save":           "Save",
        "rule":           "Rule: each player can have up to 3 pieces; the oldest disappears when playing the 4th.",
        "back":           "Back",
        "machine":        "Machine",
        "playAgain":      "Play again",
        "restart":        "Restart",
        "draw":           "Draw!",
        "win":            "%s wins!",
        "turn":           "%s to move",
        "thinking":       "The machine is thinking...",
        "localInfo":      "Two players on the same device",
        "spectator":      "You are watching",
        "errNotYourTurn": "Not your turn",
        "errOccupied":    "Cell is occupied",
        "errOutOfBounds": "Out of bounds",
        "errGameOver":    "Game is over",
        "errInvalid":     "Invalid move",
    },
    ES: {
        "settings":       "Configuración",
        "theme":          "Tema",
        "themeLight":     "Claro",
        "themeDark":      "Oscuro",
        "language":       "Idioma",
        "title":          "Tres en Raya",
        "chooseMode":     "Elige el modo de juego",
        "twoPlayers":     "2 Jugadores",
        "twoPlayersDesc": "Juega localmente, alternando X y O.",
        "vsCpu":          "Contra la Máquina",
        "vsCpuDesc":      "Desafía a la IA con 3 dificultades.",
        "easy":           "Fácil",
        "medium":         "Medio",
        "hard":           "Difícil",
        "start":          "Comenzar",
        "save":           "Guardar",
        "rule":           "Regla: cada jugador puede tener hasta 3 piezas; la más antigua desaparece al jugar la 4ª.",
        "back":           "Volver",
        "machine":        "Máquina",
        "playAgain":      "Jugar de nuevo",
        "restart":        "Reiniciar",
        "draw":           "¡Empate!",
        "win":            "¡Victoria de %s!",
        "turn":           "Turno de %s",
        "thinking":       "La máquina está pensando...",
        "localInfo":      "Dos jugadores en el mismo dispositivo",
        "spectator":      "Estás mirando",
        "errNotYourTurn": "No es tu turno",
        "errOccupied":    "Casilla ocupada",
        "errOutOfBounds": "Posición inválida",
        "errGameOver":    "El juego terminó",
        "errInvalid":     "Jugada inválida",
    },
}

// T returns the string for key in lang, or key itself when missing.
func T(lang Lang, key string) string {
    if s, ok := translations[lang][key]; ok {
        return s
    }
    return key
}

// Tf formats the string for key with args.
func Tf(lang Lang, key string, args ...any) string {
    return fmt.Sprintf(T(lang, key), args...)
}

// ParseLang accepts a supported language code.
func ParseLang(s string) (Lang, error) {
    l := Lang(strings.ToLower(strings.TrimSpace(s)))
    if _, ok := translations[l]; ok {
        return l, nil
    }
    return "", ErrUnknownLang
}

// Match picks the best supported language for an Accept-Language header.
func Match(acceptLanguage string) Lang {
    tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
    if err != nil || len(tags) == 0 {
        return Default
    }
    _, idx, conf := matcher.Match(tags...)
    if conf == language.No {
        return Default
    }
    return Langs[idx]
}
