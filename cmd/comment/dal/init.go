package dal

import (
	"UniShare.com/cmd/comment/dal/db"
)

func Init() {
	db.Init()
}
