// Пакет для управления фоновыми задачами по расписанию cron.
//
// Основные возможности:
//   - Регистрация задач по имени.
//   - Загрузка задач из реестра в расписание.
//   - Удаление задачи и внеочередной запуск.
//   - Запуск и остановка диспетчера с ожиданием выполняющихся задач.
package cronmanager

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrUnknownJob = errors.New("unknown job")

type CronJobFunc func()

type Job struct {
	Func     CronJobFunc
	Schedule string
}

// JobRegistry задачи по именам. После создания менеджера не изменяется.
type JobRegistry map[string]Job

type CronManager struct {
	mu        sync.Mutex
	scheduler *cron.Cron
	registry  JobRegistry
	entries   map[string]cron.EntryID
}

// NewCronManager создает менеджер для реестра задач. Паника в задаче логируется и не останавливает диспетчер,
// повторный запуск еще выполняющейся задачи пропускается.
func NewCronManager(registry JobRegistry) *CronManager {
	return &CronManager{
		scheduler: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		registry: registry,
		entries:  map[string]cron.EntryID{},
	}
}

// LoadJobs заново добавляет в расписание все задачи реестра. Задачи с неверным расписанием пропускаются,
// их количество возвращается в ошибке.
func (cm *CronManager) LoadJobs() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for name := range cm.entries {
		cm.unschedule(name)
	}

	var errs []error
	for name, job := range cm.registry {
		id, err := cm.scheduler.AddFunc(job.Schedule, job.Func)
		if err != nil {
			slog.Error("Schedule job", "name", name, "schedule", job.Schedule, "err", err)
			errs = append(errs, fmt.Errorf("job %s: %w", name, err))
			continue
		}
		cm.entries[name] = id
	}
	return errors.Join(errs...)
}

func (cm *CronManager) unschedule(name string) {
	if id, ok := cm.entries[name]; ok {
		cm.scheduler.Remove(id)
		delete(cm.entries, name)
	}
}

// RemoveJob убирает задачу из расписания.
func (cm *CronManager) RemoveJob(name string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.unschedule(name)
}

// RunNow синхронно выполняет задачу вне расписания.
func (cm *CronManager) RunNow(name string) error {
	job, ok := cm.registry[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	job.Func()
	return nil
}

// Next время следующего запуска задачи. Для незапланированной задачи возвращает нулевое время.
func (cm *CronManager) Next(name string) time.Time {
	cm.mu.Lock()
	id, ok := cm.entries[name]
	cm.mu.Unlock()
	if !ok {
		return time.Time{}
	}

	entry := cm.scheduler.Entry(id)
	if !entry.Valid() {
		return time.Time{}
	}
	return entry.Schedule.Next(time.Now())
}

func (cm *CronManager) Start() {
	cm.scheduler.Start()
}

// Stop останавливает диспетчер и ждет завершения выполняющихся задач.
func (cm *CronManager) Stop() {
	<-cm.scheduler.Stop().Done()
}
