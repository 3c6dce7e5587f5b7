package oracle

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/linkscan/internal/logging"
)

func quietLogger() logrus.FieldLogger {
	return logging.Discard()
}

func testClient() *Client {
	return NewClient(2*time.Second, 0)
}
