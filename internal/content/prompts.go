package content

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/matekkaland/internal/domain"
)

const questionSystemPrompt = `Matematika tanár vagy, aki 8-10 éves magyar gyerekeknek ír játékos feladatokat.
Mindig érvényes JSON-nel válaszolj, magyarázat nélkül.`

// questionPrompt asks for a JSON object {"questions": [...]}; OpenAI's JSON
// mode only accepts objects at the top level.
func questionPrompt(topics []domain.MathTopic, theme domain.AdventureTheme, count int) string {
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = string(t)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Készíts %d darab matematikai feladatot 8-10 éves magyar gyerekeknek.\n\n", count)
	fmt.Fprintf(&b, "Matematikai Témakörök (legyen vegyesen ezekből): %s.\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "Környezet/Történet (a szöveges feladatok ehhez kapcsolódjanak): %s (%s).\n\n", theme.Name, theme.Description)
	b.WriteString("Fontos:\n")
	fmt.Fprintf(&b, "- A feladatok szövege legyen játékos, és kapcsolódjon szorosan a \"%s\" témához.\n", theme.Name)
	b.WriteString("- Legyenek vegyesen egyszerű számítások és szöveges feladatok.\n")
	b.WriteString("- Ha a téma Kerekítés, akkor a feladat kérdezze meg egy szám kerekített értékét.\n")
	b.WriteString("- Minden feladathoz pontosan 4 válaszlehetőség (options) tartozzon, mind szám, és pontosan egy legyen helyes.\n\n")
	b.WriteString(`Válasz formátuma: {"questions":[{"id":"q1","questionText":"...","options":[1,2,3,4],"correctAnswer":2,"explanation":"rövid, bátorító magyarázat"}]}`)
	return b.String()
}

func encouragementPrompt(name string, succeeded bool) string {
	if succeeded {
		return fmt.Sprintf("Dicsérd meg %s-t, egy 9 éves gyereket, mert ügyesen oldott meg matek feladatokat. Legyen rövid, vicces, lelkesítő.", name)
	}
	return fmt.Sprintf("Bátorítsd %s-t, egy 9 éves gyereket, mert nem sikerült jól a feladat. Mondd neki, hogy gyakorlással menni fog. Legyen kedves.", name)
}

func imageEditPrompt(instruction string) string {
	return fmt.Sprintf("Edit this sticker image: %s. Keep the style consistent (cartoon/vector).", instruction)
}
