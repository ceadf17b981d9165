package messages

import (
	"fmt"
	"strings"

	"github.com/antonkaz/video-dub-bot/internal/i18n"
)

const ParseModeHTML = "HTML"

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

func StartWelcome(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "👋 <b>Привет!</b>\nЯ озвучиваю видео на другом языке.\n\n" +
			"🔗 Отправьте ссылку на видео — я пришлю переведённую аудиодорожку.\n" +
			"🌐 /language — язык перевода\n" +
			"🎙 /voice — живые голоса вкл/выкл\n" +
			"🕓 /history — последние переводы"
	}
	return "👋 <b>Hi!</b>\nI dub videos into another language.\n\n" +
		"🔗 Send a video link and I will reply with the translated audio track.\n" +
		"🌐 /language — translation language\n" +
		"🎙 /voice — lively voices on/off\n" +
		"🕓 /history — recent translations"
}

func Help(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "ℹ️ <b>Как это работает</b>\n" +
			"Пришлите ссылку на видео (YouTube, Vimeo, прямой файл). " +
			"Перевод длинного видео может занять несколько минут — я напишу, когда будет готово."
	}
	return "ℹ️ <b>How it works</b>\n" +
		"Send a video link (YouTube, Vimeo, a direct file). " +
		"A long video can take several minutes to translate — I will reply when it is ready."
}

func ErrorDefault(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🚫 <b>Ошибка</b>\nПопробуйте ещё раз."
	}
	return "🚫 <b>Something went wrong</b>\nPlease try again."
}

func ErrorUnknownCommand(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "❓ <b>Команда не найдена</b>"
	}
	return "❓ <b>Unknown command</b>"
}

func SendLinkHint(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🔗 <b>Нужна ссылка</b>\nОтправьте ссылку на видео, которое надо перевести."
	}
	return "🔗 <b>I need a link</b>\nSend the link to the video you want translated."
}

func TranslationStarted(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "⚙️ <b>Перевожу видео…</b>\nЭто может занять несколько минут."
	}
	return "⚙️ <b>Translating the video…</b>\nThis can take a few minutes."
}

func TranslationBusy(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "⏳ <b>Слишком много переводов</b>\nДождитесь завершения текущих и пришлите ссылку ещё раз."
	}
	return "⏳ <b>Too many active translations</b>\nWait for the current ones to finish and send the link again."
}

func TranslationReady(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "✅ <b>Готово!</b>\nАудиодорожка ниже."
	}
	return "✅ <b>Done!</b>\nThe audio track is below."
}

func TranslationFailed(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🚫 <b>Не удалось перевести видео</b>\nПроверьте ссылку и попробуйте ещё раз."
	}
	return "🚫 <b>Could not translate the video</b>\nCheck the link and try again."
}

func TranslationTemporary(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "⏳ <b>Сервис перевода перегружен</b>\nПопробуйте ещё раз через несколько минут."
	}
	return "⏳ <b>The translation service is overloaded</b>\nTry again in a few minutes."
}

func TranslationTimedOut(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🕓 <b>Перевод занял слишком много времени</b>\nПопробуйте ещё раз позже."
	}
	return "🕓 <b>The translation took too long</b>\nPlease try again later."
}

func ChooseLanguage(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🌐 <b>Выберите язык перевода</b>"
	}
	return "🌐 <b>Choose the translation language</b>"
}

func LanguageSet(lang i18n.Lang, name string) string {
	if lang == i18n.RU {
		return fmt.Sprintf("🌐 <b>Язык перевода:</b> %s", Escape(name))
	}
	return fmt.Sprintf("🌐 <b>Translation language:</b> %s", Escape(name))
}

func VoiceToggled(lang i18n.Lang, lively bool) string {
	if lang == i18n.RU {
		if lively {
			return "🎙 <b>Живые голоса включены</b>\nЕсли они недоступны для видео, я озвучу стандартным голосом."
		}
		return "🎙 <b>Живые голоса выключены</b>"
	}
	if lively {
		return "🎙 <b>Lively voices enabled</b>\nIf they are unavailable for a video, I fall back to the standard voice."
	}
	return "🎙 <b>Lively voices disabled</b>"
}

func HistoryEmpty(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🕓 <b>Переводов пока нет</b>"
	}
	return "🕓 <b>No translations yet</b>"
}

func HistoryHeader(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🕓 <b>Последние переводы</b>\n"
	}
	return "🕓 <b>Recent translations</b>\n"
}

func HistoryLine(lang i18n.Lang, videoURL, targetLang, status string) string {
	mark := "✅"
	if status != "done" {
		mark = "🚫"
	}
	return fmt.Sprintf("%s %s → %s", mark, Escape(videoURL), Escape(targetLang))
}
