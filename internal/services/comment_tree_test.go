package services_test

import (
	"testing"
	"time"

	"karmafeed/internal/db"
	"karmafeed/internal/models"
	"karmafeed/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatComment(id uint, parentID *uint, username, body string, at time.Time) models.Comment {
	return models.Comment{
		ID:        id,
		ParentID:  parentID,
		UserID:    1,
		User:      models.User{ID: 1, Username: username},
		Body:      body,
		CreatedAt: at,
	}
}

func TestBuildCommentTree_ReplyChain(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	aID, cID := uint(1), uint(3)

	// A and B are roots; C replies to A, D replies to C.
	flat := []models.Comment{
		flatComment(1, nil, "alice", "A", t0),
		flatComment(2, nil, "alice", "B", t0.Add(1*time.Minute)),
		flatComment(3, &aID, "alice", "C", t0.Add(2*time.Minute)),
		flatComment(4, &cID, "alice", "D", t0.Add(3*time.Minute)),
	}

	forest := services.BuildCommentTree(flat)

	require.Len(t, forest, 2)
	assert.Equal(t, "A", forest[0].Body)
	assert.Equal(t, "B", forest[1].Body)

	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "C", forest[0].Children[0].Body)
	require.Len(t, forest[0].Children[0].Children, 1)
	assert.Equal(t, "D", forest[0].Children[0].Children[0].Body)

	assert.Empty(t, forest[1].Children)
}

func TestBuildCommentTree_SiblingsKeepChronologicalOrder(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rootID := uint(1)

	flat := []models.Comment{
		flatComment(1, nil, "alice", "root", t0),
		flatComment(2, &rootID, "bob", "first reply", t0.Add(1*time.Minute)),
		flatComment(3, &rootID, "carol", "second reply", t0.Add(2*time.Minute)),
		flatComment(4, &rootID, "dave", "third reply", t0.Add(3*time.Minute)),
	}

	forest := services.BuildCommentTree(flat)

	require.Len(t, forest, 1)
	children := forest[0].Children
	require.Len(t, children, 3)
	assert.Equal(t, "first reply", children[0].Body)
	assert.Equal(t, "second reply", children[1].Body)
	assert.Equal(t, "third reply", children[2].Body)
}

func TestBuildCommentTree_Empty(t *testing.T) {
	forest := services.BuildCommentTree(nil)
	assert.NotNil(t, forest)
	assert.Empty(t, forest)
}

func TestBuildCommentTree_CarriesAnnotations(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := flatComment(1, nil, "alice", "*hi*", t0)
	c.LikeCount = 3
	c.LikedByMe = true

	forest := services.BuildCommentTree([]models.Comment{c})

	require.Len(t, forest, 1)
	assert.EqualValues(t, 3, forest[0].LikeCount)
	assert.True(t, forest[0].LikedByMe)
	assert.Equal(t, services.UserRef{ID: 1, Username: "alice"}, forest[0].Author)
	assert.Contains(t, forest[0].BodyHTML, "<em>hi</em>")
}

func TestLoadPostComments_AnnotatesAndOrders(t *testing.T) {
	newTestDB(t)
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	author := createUser(t, "alice")
	viewer := createUser(t, "bob")
	other := createUser(t, "carol")
	post := createPost(t, author, "hello")
	otherPost := createPost(t, author, "unrelated")

	// Inserted out of chronological order on purpose.
	second := createComment(t, post, author, nil, "second", t0.Add(1*time.Minute))
	first := createComment(t, post, author, nil, "first", t0)
	createComment(t, otherPost, author, nil, "elsewhere", t0)

	require.NoError(t, db.DB.Create(&models.CommentLike{CommentID: first.ID, UserID: viewer.ID}).Error)
	require.NoError(t, db.DB.Create(&models.CommentLike{CommentID: first.ID, UserID: other.ID}).Error)
	require.NoError(t, db.DB.Create(&models.CommentLike{CommentID: second.ID, UserID: other.ID}).Error)

	comments, err := services.LoadPostComments(post.ID, viewer.ID)
	require.NoError(t, err)

	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, "second", comments[1].Body)

	assert.EqualValues(t, 2, comments[0].LikeCount)
	assert.True(t, comments[0].LikedByMe)
	assert.EqualValues(t, 1, comments[1].LikeCount)
	assert.False(t, comments[1].LikedByMe)
}

func TestLoadPostComments_AnonymousViewer(t *testing.T) {
	newTestDB(t)
	author := createUser(t, "alice")
	liker := createUser(t, "bob")
	post := createPost(t, author, "hello")
	comment := createComment(t, post, author, nil, "first", time.Now())
	require.NoError(t, db.DB.Create(&models.CommentLike{CommentID: comment.ID, UserID: liker.ID}).Error)

	comments, err := services.LoadPostComments(post.ID, 0)
	require.NoError(t, err)

	require.Len(t, comments, 1)
	assert.EqualValues(t, 1, comments[0].LikeCount)
	assert.False(t, comments[0].LikedByMe)
}
