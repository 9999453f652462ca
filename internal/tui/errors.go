// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/store"
)

const msgServerUnavailable = "Отсутствует сеть или Сервер недоступен"

func humanizeServerUnavailableError(err error) string {
	if err == nil {
		return ""
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return msgServerUnavailable
	}

	return err.Error()
}

// humanizeAuthError renders a sign-in or registration failure.
func humanizeAuthError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrWrongPassword):
		return "Неверный логин или пароль"
	case errors.Is(err, store.ErrLoginAlreadyExists):
		return "Логин уже занят"
	case errors.Is(err, service.ErrInvalidDataProvided):
		return "Сервер отклонил данные"
	case errors.Is(err, service.ErrTransport):
		return msgServerUnavailable
	}
	return humanizeServerUnavailableError(err)
}

// humanizeSyncError renders a failed write or fetch. Offline failures are not
// errors for the user: the edit stays queued.
func humanizeSyncError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrStaleWrite):
		return "Конфликт: на сервере более новая версия"
	case errors.Is(err, service.ErrTransport):
		return "Нет связи, изменения будут отправлены позже"
	case errors.Is(err, service.ErrAuthInvalid):
		return "Сессия истекла, войдите снова"
	case errors.Is(err, service.ErrNoSession):
		return "Нет активной сессии"
	case errors.Is(err, service.ErrForbidden):
		return "Запись принадлежит другому пользователю"
	case errors.Is(err, service.ErrNotFound):
		return "Запись уже удалена на сервере"
	case errors.Is(err, service.ErrBadRequest):
		return "Сервер отклонил запись"
	case errors.Is(err, service.ErrRecordNotCached):
		return "Запись не найдена"
	}
	return humanizeServerUnavailableError(err)
}
