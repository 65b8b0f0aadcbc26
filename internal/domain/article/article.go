package article

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("article not found")

type Article struct {
	ID             string    `json:"id"`
	Titulli        string    `json:"titulli"`
	Permbajtja     string    `json:"permbajtja"`
	AuthorID       string    `json:"author_id"`
	EshtePublikuar bool      `json:"eshte_publikuar"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Patch struct {
	Titulli        *string `json:"titulli,omitempty"`
	Permbajtja     *string `json:"permbajtja,omitempty"`
	EshtePublikuar *bool   `json:"eshte_publikuar,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Titulli == nil && p.Permbajtja == nil && p.EshtePublikuar == nil
}
