package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"docchat-be/internal/entity"
	"docchat-be/internal/pkg/apperror"
	"docchat-be/internal/repository/specification"
	"docchat-be/internal/repository/unitofwork"
	"docchat-be/pkg/chatcontent"
	"docchat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupGorm(t *testing.T) *gorm.DB {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	return gormDB
}

func setupDB(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	return unitofwork.NewRepositoryFactory(setupGorm(t))
}

func seedSession(t *testing.T, uow unitofwork.UnitOfWork, orgId, userId uuid.UUID) *entity.ChatSession {
	t.Helper()
	session := &entity.ChatSession{
		Id:             uuid.New(),
		OrganizationId: orgId,
		UserId:         userId,
		Title:          "integration test session",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, uow.ChatSessionRepository().Create(context.Background(), session))
	return session
}

func TestChatSessionOwnershipScoping(t *testing.T) {
	uowFactory := setupDB(t)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	orgId := uuid.New()
	userId := uuid.New()
	session := seedSession(t, uow, orgId, userId)
	defer uow.ChatSessionRepository().Delete(ctx, specification.ByID{ID: session.Id})

	t.Run("owner sees the session", func(t *testing.T) {
		found, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: session.Id},
			specification.OwnedBy{OrganizationID: orgId, UserID: userId},
		)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, session.Id, found.Id)
	})

	t.Run("other user in same org sees nothing", func(t *testing.T) {
		found, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: session.Id},
			specification.OwnedBy{OrganizationID: orgId, UserID: uuid.New()},
		)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("same user in other org sees nothing", func(t *testing.T) {
		found, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: session.Id},
			specification.OwnedBy{OrganizationID: uuid.New(), UserID: userId},
		)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("cross-owner title update affects zero rows", func(t *testing.T) {
		affected, err := uow.ChatSessionRepository().UpdateTitle(ctx, "hijacked",
			specification.ByID{ID: session.Id},
			specification.OwnedBy{OrganizationID: orgId, UserID: uuid.New()},
		)
		require.NoError(t, err)
		assert.Zero(t, affected)
	})
}

func TestChatMessageOrderingAndRoundTrip(t *testing.T) {
	uowFactory := setupDB(t)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	orgId := uuid.New()
	userId := uuid.New()
	session := seedSession(t, uow, orgId, userId)
	defer func() {
		uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id)
		uow.ChatSessionRepository().Delete(ctx, specification.ByID{ID: session.Id})
	}()

	base := time.Now().Add(-time.Minute)
	batch := []*entity.ChatMessage{
		{
			Id:            uuid.New(),
			ChatSessionId: session.Id,
			Role:          "user",
			Parts:         []chatcontent.Part{chatcontent.TextPart("what is in the report?")},
			CreatedAt:     base,
		},
		{
			Id:            uuid.New(),
			ChatSessionId: session.Id,
			Role:          "assistant",
			Parts:         []chatcontent.Part{chatcontent.TextPart("The report covers Q3 revenue.")},
			Metadata: &chatcontent.Metadata{Sources: []chatcontent.Source{
				{DocumentId: uuid.NewString(), Title: "Q3 Report"},
			}},
			CreatedAt: base.Add(2 * time.Second),
		},
	}
	require.NoError(t, uow.ChatMessageRepository().CreateBatch(ctx, batch))

	messages, err := uow.ChatMessageRepository().FindAllBySession(ctx, session.Id)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	// Ascending created_at order
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "assistant", messages[1].Role)
	assert.True(t, messages[0].CreatedAt.Before(messages[1].CreatedAt))

	// Content survives the jsonb round trip
	assert.Equal(t, "what is in the report?", chatcontent.JoinText(messages[0].Parts))
	require.NotNil(t, messages[1].Metadata)
	require.Len(t, messages[1].Metadata.Sources, 1)
	assert.Equal(t, "Q3 Report", messages[1].Metadata.Sources[0].Title)

	count, err := uow.ChatMessageRepository().CountBySession(ctx, session.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestUndecodableMessageFailsWholeRead(t *testing.T) {
	gormDB := setupGorm(t)
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	orgId := uuid.New()
	userId := uuid.New()
	session := seedSession(t, uow, orgId, userId)
	defer func() {
		uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id)
		uow.ChatSessionRepository().Delete(ctx, specification.ByID{ID: session.Id})
	}()

	base := time.Now().Add(-time.Minute)
	corruptId := uuid.New()
	require.NoError(t, uow.ChatMessageRepository().CreateBatch(ctx, []*entity.ChatMessage{
		{
			Id:            uuid.New(),
			ChatSessionId: session.Id,
			Role:          "user",
			Parts:         []chatcontent.Part{chatcontent.TextPart("intact question")},
			CreatedAt:     base,
		},
		{
			Id:            corruptId,
			ChatSessionId: session.Id,
			Role:          "assistant",
			Parts:         []chatcontent.Part{chatcontent.TextPart("intact answer")},
			CreatedAt:     base.Add(time.Second),
		},
	}))

	// Corrupt one row behind the codec's back.
	require.NoError(t, gormDB.WithContext(ctx).
		Exec(`UPDATE chat_messages SET parts = '{"oops": true}'::jsonb WHERE id = ?`, corruptId).Error)

	// The read fails whole, naming the broken row; it never degrades into
	// a shortened list.
	messages, err := uow.ChatMessageRepository().FindAllBySession(ctx, session.Id)
	require.Error(t, err)
	assert.Nil(t, messages)
	assert.Equal(t, apperror.CodeDecodeFailed, apperror.CodeOf(err))
	assert.Contains(t, err.Error(), corruptId.String())
}

func TestDeleteSessionCascades(t *testing.T) {
	uowFactory := setupDB(t)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	orgId := uuid.New()
	userId := uuid.New()
	session := seedSession(t, uow, orgId, userId)

	require.NoError(t, uow.ChatMessageRepository().CreateBatch(ctx, []*entity.ChatMessage{{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          "user",
		Parts:         []chatcontent.Part{chatcontent.TextPart("hello")},
		CreatedAt:     time.Now(),
	}}))

	txUow := uowFactory.NewUnitOfWork(ctx)
	require.NoError(t, txUow.Begin(ctx))
	require.NoError(t, txUow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id))
	affected, err := txUow.ChatSessionRepository().Delete(ctx,
		specification.ByID{ID: session.Id},
		specification.OwnedBy{OrganizationID: orgId, UserID: userId},
	)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
	require.NoError(t, txUow.Commit())

	count, err := uow.ChatMessageRepository().CountBySession(ctx, session.Id)
	require.NoError(t, err)
	assert.Zero(t, count)

	found, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestListSessionsSnapshotPagination(t *testing.T) {
	uowFactory := setupDB(t)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	orgId := uuid.New()
	userId := uuid.New()

	var seeded []*entity.ChatSession
	for i := 0; i < 5; i++ {
		seeded = append(seeded, seedSession(t, uow, orgId, userId))
	}
	defer func() {
		for _, s := range seeded {
			uow.ChatSessionRepository().Delete(ctx, specification.ByID{ID: s.Id})
		}
	}()

	owned := specification.OwnedBy{OrganizationID: orgId, UserID: userId}

	readUow := uowFactory.NewUnitOfWork(ctx)
	require.NoError(t, readUow.BeginRead(ctx))
	defer readUow.Rollback()

	total, err := readUow.ChatSessionRepository().Count(ctx, owned)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	page, err := readUow.ChatSessionRepository().FindAll(ctx,
		owned,
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: 2, Offset: 0},
	)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	// A window past the end is empty, not an error.
	empty, err := readUow.ChatSessionRepository().FindAll(ctx,
		owned,
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: 2, Offset: 10},
	)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, readUow.Commit())
}
