// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-offline-sync/models"
)

// renderBuildInfoWindow shows the client build and, once the request
// returned, what the server reported about itself. server is nil while the
// request is in flight.
func renderBuildInfoWindow(info models.AppBuildInfo, server *serverInfoMsg) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Клиент:   GoOfflineSync %s\n", valueOrNA(info.BuildVersion()))
	fmt.Fprintf(&b, "Сборка:   %s, коммит %s\n\n", valueOrNA(info.BuildDate()), valueOrNA(info.BuildCommit()))

	switch {
	case server == nil:
		b.WriteString("Сервер:   запрос...")
	case server.err != nil:
		b.WriteString("Сервер:   " + humanizeServerUnavailableError(server.err))
	default:
		fmt.Fprintf(&b, "Сервер:   %s\n", valueOrNA(server.info.Version))
		fmt.Fprintf(&b, "Страница: %d записей\n", server.info.PageSize)
		b.WriteString("Push:     " + valueOrNA(strings.Join(server.info.Push, ", ")))
	}

	return renderPage("ИНФОРМАЦИЯ О ПРОГРАММЕ", b.String(), "esc: назад")
}

func valueOrNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}
