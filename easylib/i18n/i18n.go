/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var languageMap = map[string]language.Tag{"en": language.English, "zh": language.Chinese}

// User-visible message keys. Keys are the English text.
const (
	MsgNoWorkspace    = "No workspace found"
	MsgNoSourceFiles  = "No C source files found under %s"
	MsgBuildFailed    = "Build failed: %s"
	MsgBuildSucceeded = "Build succeeded: %s [%s]"
	MsgDiagnostics    = "%d error(s) in %d file(s)"
	MsgCompiled       = "Compiled %d file(s) with %s"
	MsgRunningTask    = "Running task %s: %s"
	MsgTaskFailed     = "Task %s failed: %s"
	MsgClearedFile    = "Cleared diagnostics of %s"
)

var zh = map[string]string{
	MsgNoWorkspace:    "未找到工作区",
	MsgNoSourceFiles:  "在 %s 下未找到 C 源文件",
	MsgBuildFailed:    "构建失败：%s",
	MsgBuildSucceeded: "构建成功：%s [%s]",
	MsgDiagnostics:    "%d 个错误，涉及 %d 个文件",
	MsgCompiled:       "使用 %[2]s 编译了 %[1]d 个文件",
	MsgRunningTask:    "运行任务 %s：%s",
	MsgTaskFailed:     "任务 %s 失败：%s",
	MsgClearedFile:    "已清除 %s 的诊断信息",
}

func init() {
	for key, msg := range zh {
		if err := message.SetString(language.Chinese, key, msg); err != nil {
			panic(err)
		}
	}
}

// GetPrinter falls back to English for unknown languages.
func GetPrinter(lang string) *message.Printer {
	langTag, exist := languageMap[lang]
	if !exist {
		langTag = language.English
	}
	return message.NewPrinter(langTag)
}
