package service

import (
	"testing"
	"time"

	"UniShare.com/cmd/model"
	"UniShare.com/pkg/constants"
)

func makeComment(id, publicationId int64, parentId *int64, level int32, offset time.Duration) *model.Comment {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return &model.Comment{
		CommentId:       id,
		PublicationId:   publicationId,
		AuthorId:        1001,
		AuthorName:      "test-user",
		Content:         "test content",
		Status:          constants.CommentStatusActive,
		ParentCommentId: parentId,
		Level:           level,
		CreatedAt:       base.Add(offset),
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestBuildCommentForestNesting(t *testing.T) {
	// a is top-level, b replies to a, c replies to b.
	flat := []*model.Comment{
		makeComment(1, 100, nil, 0, 0),
		makeComment(2, 100, int64Ptr(1), 1, time.Minute),
		makeComment(3, 100, int64Ptr(2), 2, 2*time.Minute),
	}

	forest := BuildCommentForest(flat, nil)

	if len(forest) != 1 {
		t.Fatalf("expected 1 root, got %d", len(forest))
	}
	root := forest[0]
	if root.CommentId != 1 {
		t.Errorf("expected root comment 1, got %d", root.CommentId)
	}
	if len(root.Replies) != 1 || root.Replies[0].CommentId != 2 {
		t.Fatalf("expected comment 2 nested under 1, got %+v", root.Replies)
	}
	reply := root.Replies[0]
	if len(reply.Replies) != 1 || reply.Replies[0].CommentId != 3 {
		t.Fatalf("expected comment 3 nested under 2, got %+v", reply.Replies)
	}
	if len(reply.Replies[0].Replies) != 0 {
		t.Errorf("leaf node should have an empty reply list, got %d", len(reply.Replies[0].Replies))
	}
}

func TestBuildCommentForestPreservesOrder(t *testing.T) {
	// Input is oldest first; both root order and reply order must
	// survive the rebuild.
	flat := []*model.Comment{
		makeComment(1, 100, nil, 0, 0),
		makeComment(2, 100, nil, 0, time.Minute),
		makeComment(3, 100, int64Ptr(1), 1, 2*time.Minute),
		makeComment(4, 100, nil, 0, 3*time.Minute),
		makeComment(5, 100, int64Ptr(1), 1, 4*time.Minute),
	}

	forest := BuildCommentForest(flat, nil)

	wantRoots := []int64{1, 2, 4}
	if len(forest) != len(wantRoots) {
		t.Fatalf("expected %d roots, got %d", len(wantRoots), len(forest))
	}
	for i, want := range wantRoots {
		if forest[i].CommentId != want {
			t.Errorf("root %d: expected comment %d, got %d", i, want, forest[i].CommentId)
		}
	}

	wantReplies := []int64{3, 5}
	replies := forest[0].Replies
	if len(replies) != len(wantReplies) {
		t.Fatalf("expected %d replies under comment 1, got %d", len(wantReplies), len(replies))
	}
	for i, want := range wantReplies {
		if replies[i].CommentId != want {
			t.Errorf("reply %d: expected comment %d, got %d", i, want, replies[i].CommentId)
		}
	}
}

func TestBuildCommentForestDropsOrphans(t *testing.T) {
	t.Run("OrphanOnly", func(t *testing.T) {
		flat := []*model.Comment{
			makeComment(7, 100, int64Ptr(999), 1, 0),
		}

		var dropped []int64
		forest := BuildCommentForest(flat, func(c *model.Comment) {
			dropped = append(dropped, c.CommentId)
		})

		if len(forest) != 0 {
			t.Errorf("expected empty forest, got %d roots", len(forest))
		}
		if len(dropped) != 1 || dropped[0] != 7 {
			t.Errorf("expected comment 7 reported as dropped, got %v", dropped)
		}
	})

	t.Run("OrphanAmongValid", func(t *testing.T) {
		flat := []*model.Comment{
			makeComment(1, 100, nil, 0, 0),
			makeComment(2, 100, int64Ptr(999), 1, time.Minute),
			makeComment(3, 100, int64Ptr(1), 1, 2*time.Minute),
		}

		var dropped []int64
		forest := BuildCommentForest(flat, func(c *model.Comment) {
			dropped = append(dropped, c.CommentId)
		})

		if CountForestNodes(forest) != 2 {
			t.Errorf("expected 2 surviving nodes, got %d", CountForestNodes(forest))
		}
		if len(dropped) != 1 || dropped[0] != 2 {
			t.Errorf("expected comment 2 reported as dropped, got %v", dropped)
		}
	})

	t.Run("NilHook", func(t *testing.T) {
		flat := []*model.Comment{
			makeComment(7, 100, int64Ptr(999), 1, 0),
		}
		forest := BuildCommentForest(flat, nil)
		if len(forest) != 0 {
			t.Errorf("expected empty forest with nil hook, got %d roots", len(forest))
		}
	})
}

func TestBuildCommentForestEmptyInput(t *testing.T) {
	forest := BuildCommentForest(nil, nil)
	if forest == nil {
		t.Fatal("expected non-nil empty forest")
	}
	if len(forest) != 0 {
		t.Errorf("expected empty forest, got %d roots", len(forest))
	}
}

func TestCountForestNodes(t *testing.T) {
	flat := []*model.Comment{
		makeComment(1, 100, nil, 0, 0),
		makeComment(2, 100, nil, 0, time.Minute),
		makeComment(3, 100, int64Ptr(1), 1, 2*time.Minute),
		makeComment(4, 100, int64Ptr(3), 2, 3*time.Minute),
	}
	forest := BuildCommentForest(flat, nil)
	if got := CountForestNodes(forest); got != 4 {
		t.Errorf("expected 4 nodes, got %d", got)
	}
	if got := CountForestNodes(nil); got != 0 {
		t.Errorf("expected 0 nodes for nil forest, got %d", got)
	}
}
