package contextbuilder

import (
	"sort"
	"strings"

	"github.com/probelabs/webscope/pkg/llm/tokenizer"
)

// FragmentCategory labels a prioritized context fragment.
type FragmentCategory string

const (
	FragmentSystem FragmentCategory = "system"
	FragmentCode   FragmentCategory = "code"
	FragmentError  FragmentCategory = "error"
	FragmentUser   FragmentCategory = "user"
)

// Fragment is one prioritized piece of candidate context.
type Fragment struct {
	Category FragmentCategory
	Priority int // higher is included first
	Content  string

	seq int // insertion order, breaks priority ties
}

// BudgetAssembler greedily packs prioritized fragments under a token ceiling.
// Fragments are ordered by descending priority, then insertion time. Not safe
// for concurrent use; build one per prompt.
type BudgetAssembler struct {
	maxTokens int
	tok       *tokenizer.Tokenizer // nil falls back to the static estimate
	fragments []Fragment
	nextSeq   int
}

// NewBudgetAssembler creates an assembler with the given token ceiling.
// tok may be nil; counting then uses the ceil(len/4) approximation.
func NewBudgetAssembler(maxTokens int, tok *tokenizer.Tokenizer) *BudgetAssembler {
	if maxTokens <= 0 {
		maxTokens = 8000
	}
	return &BudgetAssembler{maxTokens: maxTokens, tok: tok}
}

// Add queues a fragment for assembly.
func (a *BudgetAssembler) Add(category FragmentCategory, priority int, content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	a.fragments = append(a.fragments, Fragment{
		Category: category,
		Priority: priority,
		Content:  content,
		seq:      a.nextSeq,
	})
	a.nextSeq++
}

// Build assembles the prompt. Fragments are appended greedily while the
// running token total stays under the ceiling; a fragment that would cross it
// is skipped, and lower-priority fragments may still fit.
func (a *BudgetAssembler) Build() string {
	ordered := make([]Fragment, len(a.fragments))
	copy(ordered, a.fragments)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].seq < ordered[j].seq
	})

	var sb strings.Builder
	used := 0
	for _, fragment := range ordered {
		cost := a.countTokens(fragment.Content) + 1 // separator newline
		if used+cost > a.maxTokens {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fragment.Content)
		used += cost
	}
	return sb.String()
}

// TokensUsed returns the running total Build would report for the current
// fragment set.
func (a *BudgetAssembler) TokensUsed() int {
	used := 0
	for _, fragment := range a.fragments {
		used += a.countTokens(fragment.Content) + 1
	}
	return used
}

func (a *BudgetAssembler) countTokens(text string) int {
	if a.tok != nil {
		return a.tok.CountTokens(text)
	}
	return tokenizer.EstimateTokens(text)
}
