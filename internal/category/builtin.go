package category

// builtin maps normalized extensions to their destination category.
var builtin = map[string]ID{
	NoExtension: Uncategorized,

	// audio
	".aif":  "audio",
	".cda":  "audio",
	".mid":  "audio",
	".midi": "audio",
	".mp3":  "audio",
	".mpa":  "audio",
	".ogg":  "audio",
	".wav":  "audio",
	".wma":  "audio",
	".wpl":  "audio",
	".m3u":  "audio",

	// text
	".txt":  "text_files",
	".doc":  "microsoft/word",
	".docx": "microsoft/word",
	".odt":  "text_files",
	".pdf":  "pdf",
	".rtf":  "text_files",
	".tex":  "text_files",
	".wks":  "text_files",
	".wps":  "text_files",
	".wpd":  "text_files",

	// video
	".3g2":  "video",
	".3gp":  "video",
	".avi":  "video",
	".flv":  "video",
	".h264": "video",
	".m4v":  "video",
	".mkv":  "video",
	".mov":  "video",
	".mp4":  "video",
	".mpg":  "video",
	".mpeg": "video",
	".rm":   "video",
	".swf":  "video",
	".vob":  "video",
	".wmv":  "video",

	// images
	".ai":   "images",
	".bmp":  "images",
	".gif":  "images",
	".jpg":  "images",
	".jpeg": "images",
	".png":  "images",
	".ps":   "images",
	".psd":  "images",
	".svg":  "images",
	".tif":  "images",
	".tiff": "images",
	".cr2":  "images",

	// internet
	".asp":   "internet",
	".aspx":  "internet",
	".cer":   "internet",
	".cfm":   "internet",
	".cgi":   "internet",
	".pl":    "internet",
	".css":   "internet",
	".htm":   "internet",
	".js":    "internet",
	".jsp":   "internet",
	".part":  "internet",
	".php":   "internet",
	".rss":   "internet",
	".xhtml": "internet",
	".html":  "internet",

	// compressed
	".7z":     "compressed",
	".arj":    "compressed",
	".deb":    "compressed",
	".pkg":    "compressed",
	".rar":    "compressed",
	".rpm":    "compressed",
	".tar.gz": "compressed",
	".z":      "compressed",
	".zip":    "compressed",

	// disc images
	".bin":   "disc",
	".dmg":   "disc",
	".iso":   "disc",
	".toast": "disc",
	".vcd":   "disc",

	// data
	".csv":  "programming/database",
	".dat":  "programming/database",
	".db":   "programming/database",
	".dbf":  "programming/database",
	".log":  "programming/database",
	".mdb":  "programming/database",
	".sav":  "programming/database",
	".sql":  "programming/database",
	".tar":  "programming/database",
	".xml":  "programming/database",
	".json": "programming/database",

	// executables
	".apk":    "executables",
	".bat":    "executables",
	".com":    "executables",
	".exe":    "executables",
	".gadget": "executables",
	".jar":    "executables",
	".wsf":    "executables",

	// fonts
	".fnt": "fonts",
	".fon": "fonts",
	".otf": "fonts",
	".ttf": "fonts",

	// presentations
	".key":  "presentations",
	".odp":  "presentations",
	".pps":  "presentations",
	".ppt":  "presentations",
	".pptx": "presentations",

	// programming
	".c":     "programming/c&c++",
	".h":     "programming/c&c++",
	".class": "programming/java",
	".java":  "programming/java",
	".py":    "programming/python",
	".sh":    "programming/shell",

	// spreadsheets
	".ods":  "excel",
	".xlr":  "excel",
	".xls":  "excel",
	".xlsx": "excel",

	// system
	".bak":  "system",
	".cab":  "system",
	".cfg":  "system",
	".cpl":  "system",
	".cur":  "system",
	".dll":  "system",
	".dmp":  "system",
	".drv":  "system",
	".icns": "system",
	".ico":  "system",
	".ini":  "system",
	".lnk":  "system",
	".msi":  "system",
	".sys":  "system",
	".tmp":  "system",

	// cad
	".stl": "stl",
}
