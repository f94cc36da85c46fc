package repository

import (
	"database/sql"
	"errors"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"log"
)

type SessionRepository struct {
	DB *sql.DB
}

func (s *SessionRepository) GetSession(sessionUuid string) *model.ChartSession {
	res := s.DB.QueryRow(`
		SELECT
		    cs.id as Id,
		    cs.uuid as Uuid,
		    cs.indicators as Indicators
		FROM chart_session cs
		WHERE cs.uuid = ?
	`, sessionUuid)

	var session model.ChartSession
	err := res.Scan(&session.Id, &session.SessionUuid, &session.Indicators)

	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("session %s is not loaded: %s", sessionUuid, err.Error())
		}

		return nil
	}

	return &session
}

func (s *SessionRepository) Create(session model.ChartSession) (*int64, error) {
	res, err := s.DB.Exec(`
		INSERT INTO chart_session SET
		    uuid = ?,
		    indicators = ?
	`, session.SessionUuid, session.Indicators)

	if err != nil {
		log.Println(err)

		return nil, err
	}

	lastId, err := res.LastInsertId()

	if err != nil {
		log.Println(err)

		return nil, err
	}

	return &lastId, nil
}

// UpdateIndicators persists the session's indicator configs as a JSON
// column so the pane layout survives a restart.
func (s *SessionRepository) UpdateIndicators(session model.ChartSession) error {
	_, err := s.DB.Exec(`
		UPDATE chart_session cs SET
		    cs.indicators = ?
		WHERE cs.id = ?
	`, session.Indicators, session.Id)

	if err != nil {
		log.Println(err)

		return err
	}

	return nil
}
