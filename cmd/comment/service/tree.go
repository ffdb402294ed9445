package service

import (
	"UniShare.com/cmd/model"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// DroppedNodeFunc is called for every comment excluded from the forest
// because its parent is missing from the input. The exclusion itself is
// long-standing behavior the clients depend on; the hook exists so the
// data loss is at least visible.
type DroppedNodeFunc func(comment *model.Comment)

// BuildCommentForest organizes a flat comment list into a forest of
// top-level comments with nested replies.
//
// The input must be ordered oldest first; buckets are appended in input
// order, so both top-level comments and every reply list stay
// chronological. A comment whose parent id is absent from the input is
// dropped (reported through onDropped, never an error).
func BuildCommentForest(flat []*model.Comment, onDropped DroppedNodeFunc) []*model.CommentNode {
	nodes := make(map[int64]*model.CommentNode, len(flat))
	for _, c := range flat {
		nodes[c.CommentId] = &model.CommentNode{
			Comment: *c,
			Replies: make([]*model.CommentNode, 0),
		}
	}

	forest := make([]*model.CommentNode, 0)
	for _, c := range flat {
		node := nodes[c.CommentId]
		if c.ParentCommentId == nil {
			forest = append(forest, node)
			continue
		}
		parent, ok := nodes[*c.ParentCommentId]
		if !ok {
			hlog.Warnf("Dropping orphaned comment %d: parent %d not in publication %d result set",
				c.CommentId, *c.ParentCommentId, c.PublicationId)
			if onDropped != nil {
				onDropped(c)
			}
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	return forest
}

// CountForestNodes counts every node at every nesting level.
func CountForestNodes(forest []*model.CommentNode) int {
	total := 0
	for _, node := range forest {
		total += 1 + CountForestNodes(node.Replies)
	}
	return total
}
