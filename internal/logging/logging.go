// Package logging настраивает go-playground/log для всего процесса.
package logging

import (
	"io"
	"sync"

	"github.com/go-playground/log"
	"github.com/go-playground/log/handlers/console"
)

const DefaultTimeFormat = "2006-01-02 15:04:05"

var (
	once    sync.Once
	handler *console.Console
)

// Init добавляет консольный обработчик. Повторные вызовы ничего не делают.
// Цвет включается только для терминала.
func Init(w io.Writer, color, debug bool) {
	once.Do(func() {
		handler = console.New(color)
		handler.SetTimestampFormat(DefaultTimeFormat)
		handler.SetDisplayColor(color)
		handler.SetWriter(w)
		log.AddHandler(handler, Levels(debug)...)
	})
}

// Levels возвращает уровни, которые пишутся в лог. Debug - только в отладке.
func Levels(debug bool) []log.Level {
	if debug {
		return log.AllLevels
	}
	levels := make([]log.Level, 0, len(log.AllLevels))
	for _, l := range log.AllLevels {
		if l != log.DebugLevel {
			levels = append(levels, l)
		}
	}
	return levels
}
