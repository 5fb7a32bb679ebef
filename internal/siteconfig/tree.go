package siteconfig

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Simplici0/weddingquote/internal/validation"
)

// QuestionTree is the explicit adjacency form of the flat question list.
// Siblings are ordered by Order, ties keep their position in the list.
type QuestionTree struct {
	roots    []*Question
	children map[string][]*Question
}

// Roots returns the questions without a parent.
func (t *QuestionTree) Roots() []*Question { return t.roots }

// Children returns the questions whose ParentID is id.
func (t *QuestionTree) Children(id string) []*Question { return t.children[id] }

// BuildQuestionTree indexes questions by parent. A parent chain that loops
// back on itself is reported as a *validation.Error; questions whose parent
// does not exist are kept out of the tree.
func BuildQuestionTree(questions []Question) (*QuestionTree, error) {
	index := make(map[string]int, len(questions))
	for i, q := range questions {
		if _, seen := index[q.ID]; !seen {
			index[q.ID] = i
		}
	}

	if err := detectCycles(questions, index); err != nil {
		return nil, err
	}

	tree := &QuestionTree{children: make(map[string][]*Question)}
	for i := range questions {
		q := &questions[i]
		if q.ParentID == "" {
			tree.roots = append(tree.roots, q)
			continue
		}
		tree.children[q.ParentID] = append(tree.children[q.ParentID], q)
	}

	byOrder := func(list []*Question) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })
	}
	byOrder(tree.roots)
	for _, list := range tree.children {
		byOrder(list)
	}
	return tree, nil
}

func detectCycles(questions []Question, index map[string]int) error {
	const (
		unvisited = iota
		walking
		done
	)

	verr := &validation.Error{}
	state := make([]int, len(questions))
	for start := range questions {
		if state[start] != unvisited {
			continue
		}

		var chain []int
		cur := start
		for {
			if state[cur] == done {
				break
			}
			if state[cur] == walking {
				ids := make([]string, 0, len(chain))
				loopStart := 0
				for i, idx := range chain {
					if idx == cur {
						loopStart = i
						break
					}
				}
				for _, idx := range chain[loopStart:] {
					ids = append(ids, questions[idx].ID)
				}
				ids = append(ids, questions[cur].ID)
				verr.Add(fmt.Sprintf("customFlow.questions[%d].parentId", cur), "forms a cycle: %s", strings.Join(ids, " -> "))
				break
			}

			state[cur] = walking
			chain = append(chain, cur)

			parentID := questions[cur].ParentID
			if parentID == "" {
				break
			}
			next, ok := index[parentID]
			if !ok {
				break
			}
			cur = next
		}

		for _, idx := range chain {
			state[idx] = done
		}
	}
	return verr.OrNil()
}
