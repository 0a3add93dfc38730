package inbox

import (
	"testing"
	"time"

	"crmmail/models"
	"crmmail/utils"

	"github.com/stretchr/testify/assert"
)

func TestMarkSeenReportsOnlyFreshMail(t *testing.T) {
	api := newFakeMailAPI()
	r := NewRefresher(api, nil, time.Minute, 50, utils.Log)

	first := r.markSeen([]models.Email{{ID: "1"}, {ID: "2"}})
	assert.Len(t, first, 2)

	second := r.markSeen([]models.Email{{ID: "1"}, {ID: "2"}, {ID: "3"}})
	assert.Len(t, second, 1)
	assert.Equal(t, "3", second[0].ID)
}
