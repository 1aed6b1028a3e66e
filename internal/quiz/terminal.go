package quiz

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"hitstertrainer/internal/core"
	"hitstertrainer/internal/i18n"
	"hitstertrainer/internal/store"
)

// TerminalPrompter asks questions on a line-based terminal.
type TerminalPrompter struct {
	in        *bufio.Reader
	out       io.Writer
	localizer *i18n.Localizer
}

func NewTerminalPrompter(in io.Reader, out io.Writer, localizer *i18n.Localizer) *TerminalPrompter {
	return &TerminalPrompter{
		in:        bufio.NewReader(in),
		out:       out,
		localizer: localizer,
	}
}

// Ask prints the question and reads choices until a valid number is entered.
// The returned choice is 0-based.
func (p *TerminalPrompter) Ask(ctx context.Context, q Question, progress Progress) (int, error) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.localizer.T("quiz.progress", progress.Song, progress.Songs, int(progress.Step)+1, progress.Score))
	fmt.Fprintln(p.out, p.localizer.T(q.Step.QuestionKey()))
	for i, answer := range q.Answers {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, answer)
	}

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		fmt.Fprint(p.out, p.localizer.T("quiz.prompt.choice", len(q.Answers)))
		line, err := p.in.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			return 0, err
		}

		choice, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && choice >= 1 && choice <= len(q.Answers) {
			return choice - 1, nil
		}
		fmt.Fprintln(p.out, p.localizer.T("error.input.choice", len(q.Answers)))
	}
}

func (p *TerminalPrompter) Reveal(r Reveal) {
	if r.Correct {
		fmt.Fprintln(p.out, p.localizer.T("quiz.result.correct"))
	} else {
		fmt.Fprintln(p.out, p.localizer.T("quiz.result.wrong"))
	}

	// the full song is shown once its last question is answered
	if r.Question.Step == StepYear {
		song := r.Question.Song
		fmt.Fprintln(p.out, p.localizer.T("quiz.detail.artist", song.Artist))
		fmt.Fprintln(p.out, p.localizer.T("quiz.detail.title", song.Title))
		fmt.Fprintln(p.out, p.localizer.T("quiz.detail.year", song.Year))
	} else if !r.Correct {
		fmt.Fprintf(p.out, "→ %s\n", r.Question.CorrectAnswer())
	}
}

func (p *TerminalPrompter) Skipped(song core.Song, reason core.FailureReason) {
	fmt.Fprintln(p.out, p.localizer.T("quiz.skipped", song.Artist, song.Title, p.localizer.T(ReasonKey(reason))))
}

func (p *TerminalPrompter) Finished(result store.QuizResult) {
	fmt.Fprintln(p.out)
	for _, line := range Summary(p.localizer, result) {
		fmt.Fprintln(p.out, line)
	}
}

// Summary renders the closing lines of a round.
func Summary(localizer *i18n.Localizer, result store.QuizResult) []string {
	asked := result.MaxScore / StepsPerSong
	lines := []string{
		localizer.T("quiz.final.score", result.Score, result.MaxScore, result.Percentage()),
		localizer.T("quiz.final.artists", result.Artists, asked),
		localizer.T("quiz.final.titles", result.Titles, asked),
		localizer.T("quiz.final.years", result.Years, asked),
	}
	if result.Skipped > 0 {
		lines = append(lines, localizer.T("quiz.final.skipped", result.Skipped))
	}
	return append(lines, localizer.T(Encouragement(result.Percentage())))
}

// ReasonKey is the i18n key describing a playback failure.
func ReasonKey(reason core.FailureReason) string {
	return "playback.reason." + strings.ToLower(reason.String())
}
