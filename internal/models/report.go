// Package models содержит доменные структуры сервиса: отчёты по тикерам,
// посты блога и подписки пользователей, а также вспомогательные типы
// для приёма данных из JSON-запросов.
package models

import "encoding/json"

// ReportResult представляет результат запроса отчёта по тикеру.
// Поле Report — непрозрачный JSON-документ, сгенерированный провайдером;
// структура документа не валидируется глубже успешного парсинга.
type ReportResult struct {
	Ticker string          `json:"ticker"`
	Cached bool            `json:"cached"`
	Report json.RawMessage `json:"report"`
}

// ReportVerdict описывает минимальную часть отчёта, которую сервис
// действительно читает: финальный вердикт и мета-блок с названием компании.
type ReportVerdict struct {
	Meta struct {
		CompanyName string `json:"company_name"`
	} `json:"meta"`
	Step7Verdict struct {
		Action string `json:"action"`
	} `json:"step_7_verdict"`
}
