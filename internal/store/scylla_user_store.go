package store

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"lokali_back_end/internal/cache"
	"lokali_back_end/internal/database"
	"lokali_back_end/internal/models"
)

const cqlGetUser = `SELECT email, name, role FROM users WHERE user_id = ?`

// ScyllaUserStore lit le keyspace users avec un cache Redis en lecture
// traversante (les profils changent rarement, les commandes les résolvent
// à chaque lecture).
type ScyllaUserStore struct {
	session *gocql.Session
}

func NewScyllaUserStore() (*ScyllaUserStore, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, fmt.Errorf("store users: %w", err)
	}
	return &ScyllaUserStore{session: session}, nil
}

func (s *ScyllaUserStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if user := cache.GetCachedUser(userID); user != nil {
		return user, nil
	}

	uid, err := gocql.ParseUUID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var email, name, role string
	err = s.session.Query(cqlGetUser, uid).WithContext(ctx).Scan(&email, &name, &role)
	if err == gocql.ErrNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture utilisateur %s: %w", userID, err)
	}

	user := &models.User{
		ID:    userID,
		Email: email,
		Name:  name,
		Role:  role,
	}
	cache.CacheUser(user)

	return user, nil
}
