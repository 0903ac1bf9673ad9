package auth

const baseCSS = `
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: #0f1115; color: #e6e6e6; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; }
  .card { background: #181b22; border: 1px solid #2a2f3a; border-radius: 12px; padding: 32px 40px; max-width: 420px; text-align: center; }
  h1 { font-size: 20px; margin: 0 0 12px; }
  p { color: #9aa3b2; margin: 0; line-height: 1.5; }
  code { background: #222733; border-radius: 4px; padding: 2px 6px; }
`

const successTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>pb - signed in</title>
<style>` + baseCSS + `</style>
</head>
<body>
  <div class="card">
    <h1>Authorization received</h1>
    <p>Provider <code>{{.Provider}}</code> redirected back to pb. You can close this tab and return to your terminal.</p>
  </div>
</body>
</html>
`

const failureTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>pb - sign in failed</title>
<style>` + baseCSS + `</style>
</head>
<body>
  <div class="card">
    <h1>Sign in failed</h1>
    <p>{{.Message}}</p>
  </div>
</body>
</html>
`
