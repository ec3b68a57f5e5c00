package mysql

import (
	"TrendReport-admin/internal/config"
	"TrendReport-admin/internal/models"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore 는 리포트 실행 이력을 MySQL 에 저장한다.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore 는 설정으로 DB 에 연결하고 연결 풀을 구성한다.
func NewMySQLStore(dbCfg config.DatabaseConfig) (*MySQLStore, error) {
	if dbCfg.Driver != "mysql" {
		return nil, fmt.Errorf("지원하지 않는 데이터베이스 드라이버: %s", dbCfg.Driver)
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.DBName)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("데이터베이스 연결 열기 실패: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("데이터베이스에 연결할 수 없습니다 (ping 실패): %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	log.Println("정보：MySQL 데이터베이스 연결 성공.")
	return &MySQLStore{db: db}, nil
}

// Close 는 DB 연결을 닫는다.
func (s *MySQLStore) Close() error {
	if s.db != nil {
		log.Println("정보：MySQL 데이터베이스 연결을 닫는 중...")
		return s.db.Close()
	}
	return nil
}

// CreateRun 은 새 실행 이력을 기록하고 ID 를 돌려준다.
func (s *MySQLStore) CreateRun(run *models.ReportRun) (int64, error) {
	if run == nil {
		return 0, fmt.Errorf("run 객체는 nil 일 수 없습니다")
	}
	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	status := run.Status
	if status == "" {
		status = models.RunStatusRunning
	}
	query := `
		INSERT INTO report_runs (
			month, template_path, output_path, status,
			tags_resolved, tags_failed, error_message, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`
	res, err := s.db.Exec(query,
		run.Month, run.TemplatePath, run.OutputPath, status,
		run.TagsResolved, run.TagsFailed, run.ErrorMessage, startedAt, run.FinishedAt)
	if err != nil {
		return 0, fmt.Errorf("실행 이력 기록 실패 (month: %s): %w", run.Month, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("새 실행 이력의 ID 조회 실패: %w", err)
	}
	log.Printf("정보：실행 이력 기록 성공, ID: %d (month: %s)\n", id, run.Month)
	return id, nil
}

// UpdateRun 은 실행 결과(상태, 태그 카운트, 종료 시각)를 갱신한다.
func (s *MySQLStore) UpdateRun(run *models.ReportRun) error {
	if run == nil || run.ID == 0 {
		return fmt.Errorf("유효하지 않은 run 객체이거나 ID 가 없습니다")
	}
	query := `
		UPDATE report_runs SET
			status = ?, output_path = ?, tags_resolved = ?, tags_failed = ?,
			error_message = ?, finished_at = ?
		WHERE id = ?;`
	_, err := s.db.Exec(query,
		run.Status, run.OutputPath, run.TagsResolved, run.TagsFailed,
		run.ErrorMessage, run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("실행 이력 갱신 실패 (ID: %d): %w", run.ID, err)
	}
	log.Printf("정보：실행 이력 갱신 성공 (ID: %d, Status: %s)\n", run.ID, run.Status)
	return nil
}

// ListRuns 는 최근 실행 이력을 최신순으로 나열한다.
func (s *MySQLStore) ListRuns(limit int) ([]models.ReportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, month, template_path, output_path, status,
		       tags_resolved, tags_failed, error_message, started_at, finished_at
		FROM report_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?;`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("실행 이력 조회 실패: %w", err)
	}
	defer rows.Close()

	var runs []models.ReportRun
	for rows.Next() {
		var r models.ReportRun
		if err := rows.Scan(&r.ID, &r.Month, &r.TemplatePath, &r.OutputPath, &r.Status,
			&r.TagsResolved, &r.TagsFailed, &r.ErrorMessage, &r.StartedAt, &r.FinishedAt); err != nil {
			log.Printf("오류：실행 이력 행 스캔 실패: %v\n", err)
			continue
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("실행 이력 결과 처리 중 오류 발생: %w", err)
	}
	log.Printf("정보：실행 이력 %d건 조회.\n", len(runs))
	return runs, nil
}
