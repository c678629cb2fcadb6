package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/matekkaland/internal/app"
	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/quiz"
)

var (
	errQuit      = errors.New("quit")
	errBadChoice = errors.New("ismeretlen választás")
)

// machine is the part of the state machine the terminal drives.
type machine interface {
	Snapshot() app.Snapshot
	Dispatch(in app.Intent) (app.Snapshot, bool)
}

// terminal renders snapshots as text screens and turns typed lines into
// intents.
type terminal struct {
	m    machine
	in   io.Reader
	out  io.Writer
	poll time.Duration
}

func newTerminal(m machine, in io.Reader, out io.Writer) *terminal {
	return &terminal{m: m, in: in, out: out, poll: 100 * time.Millisecond}
}

// lines feeds input lines to a channel that is closed at end of input.
func lines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

// run loops until the player quits or input ends.
func (t *terminal) run(ctx context.Context) error {
	input := lines(t.in)
	for {
		snap, ok := t.settle(ctx)
		if !ok {
			t.leave(snap)
			return nil
		}
		t.render(snap)

		var line string
		select {
		case <-ctx.Done():
			t.leave(snap)
			return nil
		case line, ok = <-input:
			if !ok {
				t.leave(snap)
				return nil
			}
		}

		in, err := parseLine(snap, line)
		if errors.Is(err, errQuit) {
			t.leave(snap)
			fmt.Fprintln(t.out, "Szia, legközelebb is várunk! 👋")
			return nil
		}
		if err != nil {
			fmt.Fprintf(t.out, "⚠ %v\n", err)
			continue
		}

		if _, accepted := t.m.Dispatch(in); !accepted {
			fmt.Fprintln(t.out, "⚠ Ez most nem lehetséges.")
		}
	}
}

// settle waits out loading and reveal phases. The reveal feedback is
// printed once per answer. It reports false when ctx ends first.
func (t *terminal) settle(ctx context.Context) (app.Snapshot, bool) {
	announced := false
	for {
		snap := t.m.Snapshot()
		busy, note := pending(snap)
		if !busy {
			return snap, true
		}
		if !announced && note != "" {
			fmt.Fprintln(t.out, note)
			announced = true
		}

		select {
		case <-ctx.Done():
			return snap, false
		case <-time.After(t.poll):
		}
	}
}

// pending reports whether snap is waiting on asynchronous work, with the
// line to show meanwhile.
func pending(snap app.Snapshot) (bool, string) {
	switch s := snap.State.(type) {
	case app.QuizActive:
		if s.Loading || s.Quiz == nil {
			return true, "⏳ Feladatok betöltése..."
		}
		if s.Quiz.Revealed {
			return true, feedback(s.LastAnswer)
		}
	case app.Result:
		if s.EncouragementLoading {
			return true, ""
		}
	case app.StickerAlbum:
		if s.Edit != nil && s.Edit.Loading {
			return true, "🎨 A matrica készül..."
		}
	}
	return false, ""
}

func feedback(a *quiz.AnswerOutcome) string {
	if a == nil {
		return ""
	}
	if a.IsCorrect {
		return "✅ Helyes!"
	}
	msg := "❌ A helyes válasz: " + formatNumber(a.CorrectAnswer)
	if a.Explanation != "" {
		msg += "\n   " + a.Explanation
	}
	return msg
}

// leave commits or abandons whatever the current screen holds.
func (t *terminal) leave(snap app.Snapshot) {
	switch snap.State.(type) {
	case app.QuizActive:
		t.m.Dispatch(app.Back{})
	case app.Result:
		t.m.Dispatch(app.ReturnHome{})
	}
}

func (t *terminal) render(snap app.Snapshot) {
	fmt.Fprintln(t.out)
	if snap.SaveError != "" {
		fmt.Fprintf(t.out, "⚠ Mentési hiba: %s\n", snap.SaveError)
	}
	renderScreen(t.out, snap)
	fmt.Fprint(t.out, "> ")
}

func renderScreen(w io.Writer, snap app.Snapshot) {
	switch s := snap.State.(type) {
	case app.ThemeSelect:
		fmt.Fprintln(w, "Üdv a MatekKalandban! Válassz stílust:")
		for i, d := range designThemes {
			attr := catalog.Design(d)
			fmt.Fprintf(w, "  %d) %s %s\n", i+1, attr.Emoji, attr.Title)
		}

	case app.Onboarding:
		fmt.Fprintln(w, "Hogy hívnak? Írd be a neved és az avatárod számát (pl. Anna 3):")
		for i, a := range catalog.Avatars() {
			fmt.Fprintf(w, "  %d) %s", i+1, a)
			if (i+1)%7 == 0 {
				fmt.Fprintln(w)
			}
		}
		fmt.Fprintln(w)

	case app.Dashboard:
		if snap.Player != nil {
			fmt.Fprintf(w, "%s Szia, %s! %s\n", snap.Player.Avatar, snap.Player.Name, snap.Design.Tagline)
		}
		fmt.Fprintln(w, "  1) Játék")
		fmt.Fprintln(w, "  2) Matricaalbum")
		fmt.Fprintln(w, "  3) Statisztika")
		fmt.Fprintln(w, "  q) Kilépés")

	case app.AdventureSelect:
		fmt.Fprintln(w, "Hová induljunk?")
		for i, a := range catalog.Adventures() {
			fmt.Fprintf(w, "  %d) %s %s: %s\n", i+1, a.Emoji, a.Name, a.Description)
		}
		fmt.Fprintln(w, "  0) Vissza")

	case app.TopicSelect:
		fmt.Fprintf(w, "%s %s: válassz témákat (pl. 1 3):\n", s.Adventure.Emoji, s.Adventure.Name)
		for i, t := range catalog.Topics() {
			fmt.Fprintf(w, "  %d) %s\n", i+1, t.Label)
		}
		fmt.Fprintln(w, "  0) Vissza")

	case app.QuizActive:
		q := s.Quiz
		if q == nil || q.Current == nil {
			return
		}
		fmt.Fprintf(w, "%s %s  |  %d/%d. kérdés  |  ⭐ %d\n", s.Adventure.Emoji, s.Adventure.Name, q.CurrentIndex+1, q.Total, q.Score)
		fmt.Fprintln(w, q.Current.Text)
		for i, o := range q.Current.Options {
			fmt.Fprintf(w, "  %d) %s\n", i+1, formatNumber(o))
		}
		fmt.Fprintln(w, "  0) Feladom")

	case app.Result:
		fmt.Fprintf(w, "Eredmény: %d/%d\n", s.Correct, s.Total)
		if s.Outcome.Perfect {
			fmt.Fprintln(w, "🏆 Hibátlan!")
		}
		if s.Sticker != nil {
			if st, ok := catalog.Sticker(*s.Sticker); ok {
				fmt.Fprintf(w, "🎁 Új matrica: %s\n", st.Name)
			}
		}
		if s.Encouragement != "" {
			fmt.Fprintf(w, "💬 %s\n", s.Encouragement)
		}
		fmt.Fprintln(w, "Nyomj Entert a folytatáshoz.")

	case app.StickerAlbum:
		if snap.Player != nil {
			printAlbum(w, snap.Player.Stats)
		}
		if e := s.Edit; e != nil {
			switch {
			case e.Failed:
				fmt.Fprintln(w, "A matrica szerkesztése nem sikerült. d) elvet")
			case e.Preview != "":
				fmt.Fprintf(w, "Az új matrica elkészült (%d bájt). a) elfogad  d) elvet\n", len(e.Preview))
			}
		}
		fmt.Fprintln(w, "Parancsok: m <honnan> <hová>  |  t <téma>  |  e <szám> <kérés>  |  0) Vissza")
		fmt.Fprintf(w, "Témák: %s\n", strings.Join(albumThemeIDs(), ", "))

	case app.StatsView:
		if snap.Player != nil {
			printStats(w, snap.Player)
		}
		fmt.Fprintln(w, "Nyomj Entert a visszalépéshez.")
	}
}

var designThemes = []domain.DesignTheme{domain.DesignBoy, domain.DesignGirl}

// parseLine maps a typed line to an intent for the current screen.
func parseLine(snap app.Snapshot, line string) (app.Intent, error) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)

	if strings.EqualFold(line, "q") {
		return nil, errQuit
	}

	switch s := snap.State.(type) {
	case app.ThemeSelect:
		i, err := choice(line, len(designThemes))
		if err != nil {
			return nil, err
		}
		return app.SelectDesignTheme{Theme: designThemes[i]}, nil

	case app.Onboarding:
		if len(fields) < 2 {
			return nil, errors.New("add meg a neved és egy avatár számát")
		}
		avatars := catalog.Avatars()
		i, err := choice(fields[len(fields)-1], len(avatars))
		if err != nil {
			return nil, err
		}
		return app.SubmitProfile{Name: strings.Join(fields[:len(fields)-1], " "), Avatar: avatars[i]}, nil

	case app.Dashboard:
		switch line {
		case "1":
			return app.OpenPlay{}, nil
		case "2":
			return app.OpenAlbum{}, nil
		case "3":
			return app.OpenStats{}, nil
		}
		return nil, errBadChoice

	case app.AdventureSelect:
		if line == "0" {
			return app.Back{}, nil
		}
		adventures := catalog.Adventures()
		i, err := choice(line, len(adventures))
		if err != nil {
			return nil, err
		}
		return app.SelectAdventure{Adventure: adventures[i].ID}, nil

	case app.TopicSelect:
		if line == "0" {
			return app.Back{}, nil
		}
		all := catalog.Topics()
		var topics []domain.MathTopic
		for _, f := range strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' }) {
			i, err := choice(f, len(all))
			if err != nil {
				return nil, err
			}
			topics = append(topics, all[i].ID)
		}
		if len(topics) == 0 {
			return nil, errors.New("válassz legalább egy témát")
		}
		return app.ConfirmTopics{Topics: topics}, nil

	case app.QuizActive:
		if line == "0" {
			return app.Back{}, nil
		}
		if s.Quiz == nil || s.Quiz.Current == nil {
			return nil, errBadChoice
		}
		opts := s.Quiz.Current.Options
		i, err := choice(line, len(opts))
		if err != nil {
			return nil, err
		}
		return app.Answer{Option: opts[i]}, nil

	case app.Result:
		return app.ReturnHome{}, nil

	case app.StatsView:
		return app.Back{}, nil

	case app.StickerAlbum:
		order := catalog.StickerIDs()
		if snap.Player != nil {
			order = snap.Player.Stats.StickerOrder
		}
		return parseAlbumLine(order, fields)
	}
	return nil, errBadChoice
}

func parseAlbumLine(order []domain.StickerID, fields []string) (app.Intent, error) {
	if len(fields) == 0 {
		return nil, errBadChoice
	}
	switch fields[0] {
	case "0":
		return app.Back{}, nil
	case "a":
		return app.AcceptStickerEdit{}, nil
	case "d":
		return app.DiscardStickerEdit{}, nil
	case "t":
		if len(fields) != 2 {
			return nil, errors.New("használat: t <téma>")
		}
		return app.SelectAlbumTheme{Theme: domain.AlbumThemeID(fields[1])}, nil
	case "m":
		if len(fields) != 3 {
			return nil, errors.New("használat: m <honnan> <hová>")
		}
		n := len(order)
		from, err := choice(fields[1], n)
		if err != nil {
			return nil, err
		}
		to, err := choice(fields[2], n)
		if err != nil {
			return nil, err
		}
		return app.ReorderStickers{From: from, To: to}, nil
	case "e":
		if len(fields) < 3 {
			return nil, errors.New("használat: e <szám> <kérés>")
		}
		i, err := choice(fields[1], len(order))
		if err != nil {
			return nil, err
		}
		return app.RequestStickerEdit{Sticker: order[i], Instruction: strings.Join(fields[2:], " ")}, nil
	}
	return nil, errBadChoice
}

// choice parses a 1-based menu number into an index below n.
func choice(s string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 1 || i > n {
		return 0, errBadChoice
	}
	return i - 1, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
