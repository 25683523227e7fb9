// Пакет для очистки хранилища артефактов экспорта. Удаляет файлы старше времени жизни артефакта
// и файлы с именами, которые сервис не мог сгенерировать.
//
// Основные возможности:
//   - Удаление устаревших артефактов.
//   - Удаление посторонних файлов из корня хранилища.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	filestorage "github.com/aisa-it/docexport/internal/docexport/file-storage"
)

// ArtifactsCleanJob имя задачи очистки в реестре cron.
const ArtifactsCleanJob = "artifacts_clean"

type ArtifactsCleaner struct {
	si  filestorage.FileStorage
	ttl time.Duration
	now func() time.Time
}

func NewArtifactsCleaner(si filestorage.FileStorage, ttl time.Duration) *ArtifactsCleaner {
	return &ArtifactsCleaner{si: si, ttl: ttl, now: time.Now}
}

// CleanArtifacts удаляет устаревшие артефакты и возвращает количество удаленных файлов.
func (ac *ArtifactsCleaner) CleanArtifacts(ctx context.Context) (int, error) {
	slog.Info("Start artifacts cleaning", "ttl", ac.ttl)
	deadline := ac.now().Add(-ac.ttl)

	var expired []string
	if err := ac.si.ListRoot(ctx, func(fi filestorage.FileInfo) error {
		if filestorage.ValidateName(fi.Name) != nil || fi.CreatedAt.Before(deadline) {
			expired = append(expired, fi.Name)
		}
		return nil
	}); err != nil {
		slog.Error("List artifacts fail", "err", err)
		return 0, err
	}

	var deleted int
	for _, name := range expired {
		if err := ac.si.Delete(ctx, name); err != nil {
			slog.Error("Delete artifact", "name", name, "err", err)
			continue
		}
		deleted++
	}
	slog.Info("Finish artifacts cleaning", "deleted", deleted)
	return deleted, nil
}

// Run точка входа для cron.
func (ac *ArtifactsCleaner) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ac.CleanArtifacts(ctx)
}
