package config

import (
	"io"
	"time"

	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// TaskFile is the document read by "task import".
type TaskFile struct {
	Tasks []TaskDTO `yaml:"tasks"`
}

// TaskDTO is one task definition. Coverage accepts everything domain.ParseCoverage does.
type TaskDTO struct {
	Name           string        `yaml:"name"`
	Coverage       string        `yaml:"coverage"`
	UpdateInterval time.Duration `yaml:"updateInterval"`
	Expires        *time.Time    `yaml:"expires"`
}

// ReadTaskFile decodes a task file into task definitions. It stops at the
// first invalid entry.
func ReadTaskFile(r io.Reader) ([]domain.NewTask, error) {
	var file TaskFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, zerr.Wrap(err, domain.ErrImportFailed.Error())
	}

	tasks := make([]domain.NewTask, 0, len(file.Tasks))
	for i, dto := range file.Tasks {
		coverage, err := domain.ParseCoverage(dto.Coverage)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "index", i), "task", dto.Name)
		}
		nt := domain.NewTask{
			Name:           dto.Name,
			Coverage:       coverage,
			UpdateInterval: dto.UpdateInterval,
			ExpirationDate: dto.Expires,
		}
		if err := nt.Validate(); err != nil {
			return nil, zerr.With(zerr.With(err, "index", i), "task", dto.Name)
		}
		tasks = append(tasks, nt)
	}
	return tasks, nil
}
