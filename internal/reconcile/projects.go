package reconcile

import (
	"context"
	"fmt"

	"notionsync/internal/contextutil"
)

// ProjectResolver maps category labels to sink project ids, creating missing
// projects on first use. Lookups are exact string matches on the name.
type ProjectResolver struct {
	sink    Sink
	known   []SinkProject
	created []SinkProject
}

// NewProjectResolver creates a resolver seeded with the sink's current projects.
func NewProjectResolver(sink Sink, known []SinkProject) *ProjectResolver {
	projects := make([]SinkProject, len(known))
	copy(projects, known)
	return &ProjectResolver{
		sink:  sink,
		known: projects,
	}
}

// Resolve returns the id of the non-deleted project named label. A missing
// project is added and committed right away so the id can be used by the
// mutations that follow, then cached for the rest of the run.
func (p *ProjectResolver) Resolve(ctx context.Context, label string) (string, error) {
	if project, ok := p.lookup(label); ok {
		return project.ID, nil
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "creating sink project", "project", label)

	tempID := p.sink.AddProject(label)
	mapping, err := p.sink.Commit(ctx)
	if err != nil {
		return "", sinkWriteError(string(MutationProjectAdd), err)
	}
	id, ok := mapping[tempID]
	if !ok || id == "" {
		return "", sinkWriteError(string(MutationProjectAdd), fmt.Errorf("no id assigned to project %q", label))
	}

	project := SinkProject{ID: id, Name: label}
	p.known = append(p.known, project)
	p.created = append(p.created, project)
	return id, nil
}

// Project returns the project with the given id, including projects created
// during this run.
func (p *ProjectResolver) Project(id string) (SinkProject, bool) {
	for _, project := range p.known {
		if project.ID == id {
			return project, true
		}
	}
	return SinkProject{}, false
}

// Created returns the projects added by Resolve.
func (p *ProjectResolver) Created() []SinkProject {
	return p.created
}

func (p *ProjectResolver) lookup(name string) (SinkProject, bool) {
	for _, project := range p.known {
		if project.Name == name && !project.Deleted {
			return project, true
		}
	}
	return SinkProject{}, false
}
