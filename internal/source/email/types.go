package email

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emersion/go-imap/v2"
)

// messageID identifies a message across IMAP sessions. UIDs are only
// unique within a folder, so the folder name is part of the ID.
type messageID struct {
	Folder string
	UID    imap.UID
}

// String renders the ID as "folder/uid".
func (id messageID) String() string {
	return id.Folder + "/" + strconv.FormatUint(uint64(id.UID), 10)
}

// parseMessageID parses an ID produced by messageID.String. Folder
// names may themselves contain '/', so the last separator wins.
func parseMessageID(s string) (messageID, error) {
	idx := strings.LastIndex(s, "/")
	if idx <= 0 || idx == len(s)-1 {
		return messageID{}, fmt.Errorf("invalid message id %q: expected folder/uid", s)
	}

	uid, err := strconv.ParseUint(s[idx+1:], 10, 32)
	if err != nil || uid == 0 {
		return messageID{}, fmt.Errorf("invalid UID in message id %q", s)
	}

	return messageID{Folder: s[:idx], UID: imap.UID(uid)}, nil
}
