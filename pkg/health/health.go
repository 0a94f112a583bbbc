package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker интерфейс для проверки здоровья сервиса
type HealthChecker interface {
	Check() *HealthStatus
}

// HealthStatus представляет статус здоровья сервиса
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]Status `json:"services,omitempty"`
	Version   string            `json:"version,omitempty"`
}

// Status представляет статус сервиса
type Status struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// SimpleHealthChecker простая реализация HealthChecker
type SimpleHealthChecker struct {
	version string
}

// NewSimpleHealthChecker создает новый SimpleHealthChecker
func NewSimpleHealthChecker(version string) *SimpleHealthChecker {
	return &SimpleHealthChecker{version: version}
}

// Check проверяет здоровье сервиса
func (s *SimpleHealthChecker) Check() *HealthStatus {
	return &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
	}
}

// Probe функция проверки отдельной зависимости
type Probe func(ctx context.Context) error

// DependencyHealthChecker проверяет здоровье сервиса вместе
// с его зависимостями (база данных, Redis, брокер)
type DependencyHealthChecker struct {
	version string
	timeout time.Duration
	probes  map[string]Probe
}

// NewDependencyHealthChecker создает новый DependencyHealthChecker
func NewDependencyHealthChecker(version string, timeout time.Duration) *DependencyHealthChecker {
	return &DependencyHealthChecker{
		version: version,
		timeout: timeout,
		probes:  make(map[string]Probe),
	}
}

// AddProbe регистрирует проверку зависимости под именем
func (d *DependencyHealthChecker) AddProbe(name string, probe Probe) {
	d.probes[name] = probe
}

// Check проверяет здоровье сервиса и всех его зависимостей.
// Если хотя бы одна зависимость недоступна, общий статус degraded.
func (d *DependencyHealthChecker) Check() *HealthStatus {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   d.version,
		Services:  make(map[string]Status),
	}

	for name, probe := range d.probes {
		if err := probe(ctx); err != nil {
			status.Status = "degraded"
			status.Services[name] = Status{Status: "unhealthy", Details: err.Error()}
			continue
		}
		status.Services[name] = Status{Status: "healthy"}
	}

	return status
}

// Handler создает HTTP обработчик для health check эндпоинта
func Handler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := checker.Check()

		w.Header().Set("Content-Type", "application/json")
		if status.Status == "healthy" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		// Отправляем JSON ответ
		json.NewEncoder(w).Encode(status)
	}
}

// ReadyHandler создает HTTP обработчик для ready check эндпоинта
// Возвращает 200 если сервис готов принимать трафик
func ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		
		response := map[string]string{
			"status": "ready",
		}
		json.NewEncoder(w).Encode(response)
	}
}

// LiveHandler создает HTTP обработчик для live check эндпоинта
// Возвращает 200 если сервис жив
func LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		
		response := map[string]string{
			"status": "alive",
		}
		json.NewEncoder(w).Encode(response)
	}
}