// Package guide implements the eight-step onboarding sequence.
//
// The engine only tracks which step is current and whether the active project
// satisfies that step's readiness predicate. It never writes to the project;
// edits made while a step is shown go straight through the state model.
package guide

import (
	"errors"
	"math"

	"github.com/steveyegge/pmc/internal/types"
)

var (
	// ErrStepNotReady is returned by Next when the current step's predicate is false
	ErrStepNotReady = errors.New("current step is not complete")

	// ErrFinalStep is returned by Next on the last step
	ErrFinalStep = errors.New("already at the final step")

	// ErrFirstStep is returned by Back on step 1
	ErrFirstStep = errors.New("already at the first step")
)

// Step describes one screen of the guided sequence
type Step struct {
	Number      int
	Title       string
	Description string

	// Ready reports whether p has what this step asks for
	Ready func(p types.Project) bool
}

// minDatedTasks is how many dated tasks step 5 asks for; the predicate also
// accepts any single task.
const minDatedTasks = 3

var steps = []Step{
	{
		Number:      1,
		Title:       "① 名前と目的を決めましょう",
		Description: "「このプロジェクトで何を達成したいか」を1〜2行で。あとから変えてOKです。",
		Ready: func(p types.Project) bool {
			return p.Name != "" && p.Goals != ""
		},
	},
	{
		Number:      2,
		Title:       "② 期間を入れましょう",
		Description: "開始日と終了日を入れると、進捗の見通しが立ちます。",
		Ready: func(p types.Project) bool {
			return p.Start != "" && p.End != ""
		},
	},
	{
		Number:      3,
		Title:       "③ 関係者（連絡すべき人）を入れましょう",
		Description: "例: 発注者A, エンジニアB, デザイナーC",
		Ready: func(p types.Project) bool {
			return len(p.Stakeholders) > 0
		},
	},
	{
		Number:      4,
		Title:       "④ タスク雛形を一括で入れましょう",
		Description: "迷ったらまず雛形でOK。あとで消したり直せます。",
		Ready: func(p types.Project) bool {
			return len(p.Tasks) > 0
		},
	},
	{
		Number:      5,
		Title:       "⑤ 期日を入れましょう（まずは3件）",
		Description: "開始/終了を入れると、進捗バーが動きます。まずは上から3件だけでOK。",
		Ready: func(p types.Project) bool {
			dated := 0
			for _, t := range p.Tasks {
				if t.HasDates() {
					dated++
				}
			}
			return dated >= minDatedTasks || len(p.Tasks) >= 1
		},
	},
	{
		Number:      6,
		Title:       "⑥ リスク（心配ごと）を1つ書きましょう",
		Description: "例: 「外部APIの遅延」「要件の追加」など。後で増やしてOK。",
		Ready: func(p types.Project) bool {
			return len(p.Risks) > 0
		},
	},
	{
		Number:      7,
		Title:       "⑦ 今日の計画を60秒でメモ",
		Description: "昨日/今日/ブロッカー（困りごと）を書いて「保存」。これで毎日の習慣ができます。",
		Ready: func(p types.Project) bool {
			return len(p.Standups) > 0
		},
	},
	{
		Number:      8,
		Title:       "⑧ 完了！次の使い方",
		Description: "Timeline で進捗を確認、Risks で対策を追記、Stand-up で毎日の記録。AI に「週次レポート案を作って」など質問できます。",
		Ready:       func(types.Project) bool { return true },
	},
}

// Total is the number of steps
var Total = len(steps)

// Steps returns the step definitions in order
func Steps() []Step {
	return append([]Step(nil), steps...)
}

// Engine is a cursor over the step sequence
type Engine struct {
	current int // 1-based
}

// New returns an engine positioned at step 1
func New() *Engine {
	return &Engine{current: 1}
}

// Current returns the current step number (1-based)
func (e *Engine) Current() int {
	return e.current
}

// Step returns the current step definition
func (e *Engine) Step() Step {
	return steps[e.current-1]
}

// Ready evaluates the current step's predicate against p
func (e *Engine) Ready(p types.Project) bool {
	return e.Step().Ready(p)
}

// IsFinal reports whether the engine is on the last step
func (e *Engine) IsFinal() bool {
	return e.current == Total
}

// Next advances one step if the current step is ready for p
func (e *Engine) Next(p types.Project) error {
	if e.IsFinal() {
		return ErrFinalStep
	}
	if !e.Ready(p) {
		return ErrStepNotReady
	}
	e.current++
	return nil
}

// Back moves one step back
func (e *Engine) Back() error {
	if e.current == 1 {
		return ErrFirstStep
	}
	e.current--
	return nil
}

// Progress returns how far through the sequence the current step is, as a
// rounded percentage (step 1 = 13, step 8 = 100)
func (e *Engine) Progress() int {
	return int(math.Round(float64(e.current) / float64(Total) * 100))
}
