package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"notionsync/internal/reconcile"
	"notionsync/internal/reconcile/mocks"
)

func TestProjectResolver_Resolve(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)

	known := []reconcile.SinkProject{
		{ID: "1", Name: "Inbox"},
		{ID: "2", Name: "Errands", Deleted: true},
		{ID: "3", Name: "Work"},
	}
	resolver := reconcile.NewProjectResolver(sink, known)

	id, err := resolver.Resolve(context.Background(), "Work")
	require.NoError(t, err)
	assert.Equal(t, "3", id)

	sink.EXPECT().AddProject("Errands").Return("tmp-p").Times(1)
	sink.EXPECT().Commit(gomock.Any()).Return(map[string]string{"tmp-p": "9"}, nil).Times(1)

	id, err = resolver.Resolve(context.Background(), "Errands")
	require.NoError(t, err)
	assert.Equal(t, "9", id, "deleted projects are not reused")

	id, err = resolver.Resolve(context.Background(), "Errands")
	require.NoError(t, err)
	assert.Equal(t, "9", id, "created project is cached for the run")

	assert.Len(t, resolver.Created(), 1)
	p, ok := resolver.Project("9")
	require.True(t, ok)
	assert.Equal(t, "Errands", p.Name)
}

func TestProjectResolver_ExactMatchOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	resolver := reconcile.NewProjectResolver(sink, []reconcile.SinkProject{{ID: "3", Name: "Work"}})

	sink.EXPECT().AddProject("work ").Return("tmp")
	sink.EXPECT().Commit(gomock.Any()).Return(map[string]string{"tmp": "4"}, nil)

	id, err := resolver.Resolve(context.Background(), "work ")
	require.NoError(t, err)
	assert.Equal(t, "4", id)
}

func TestProjectResolver_CommitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	resolver := reconcile.NewProjectResolver(sink, nil)

	sink.EXPECT().AddProject("Errands").Return("tmp")
	sink.EXPECT().Commit(gomock.Any()).Return(nil, errors.New("unauthorized"))

	_, err := resolver.Resolve(context.Background(), "Errands")
	var writeErr *reconcile.RemoteWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "project_add", writeErr.Op)
	assert.Empty(t, resolver.Created())
}

func TestProjectResolver_MissingMapping(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	resolver := reconcile.NewProjectResolver(sink, nil)

	sink.EXPECT().AddProject("Errands").Return("tmp")
	sink.EXPECT().Commit(gomock.Any()).Return(map[string]string{}, nil)

	_, err := resolver.Resolve(context.Background(), "Errands")
	require.Error(t, err)
}
