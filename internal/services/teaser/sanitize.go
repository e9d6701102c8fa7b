package teaser

import "strings"

// StripTables вычищает из текста утёкшие табличные данные: строки
// markdown-таблиц (после обрезки пробелов начинаются и заканчиваются
// символом |) и строки-разделители из пробелов, |, : и -.
// Преобразование детерминировано и идемпотентно.
func StripTables(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			continue
		}
		if trimmed != "" && isSeparatorLine(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// isSeparatorLine распознаёт строку-разделитель таблицы: она состоит
// только из |, :, - и пробелов и содержит хотя бы один |.
func isSeparatorLine(trimmed string) bool {
	hasPipe := false
	for _, r := range trimmed {
		switch r {
		case '|':
			hasPipe = true
		case ':', '-', ' ', '\t':
		default:
			return false
		}
	}
	return hasPipe
}
