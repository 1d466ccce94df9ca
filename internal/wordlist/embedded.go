package wordlist

// defaultWordlist is a compact set of the most commonly exposed paths,
// used when no wordlist file is supplied.
const defaultWordlist = `
# directories
admin
admin/
administrator
api
api/v1
api/v2
app
assets
backup
backups
bin
cache
cgi-bin
config
console
dashboard
data
db
debug
dev
dist
doc
docs
download
downloads
error
files
home
images
img
include
includes
js
lib
login
logout
logs
mail
media
modules
new
old
panel
portal
private
public
register
scripts
secure
server-status
settings
setup
site
src
static
stats
status
storage
system
temp
test
tmp
tools
upload
uploads
user
users
vendor
web
webmail
wp-admin
wp-content
wp-includes

# files
.env
.git/HEAD
.gitignore
.htaccess
.htpasswd
backup.sql
backup.zip
changelog.txt
composer.json
config.%EXT%
crossdomain.xml
database.sql
dump.sql
error_log
favicon.ico
index.%EXT%
info.%EXT%
license.txt
package.json
phpinfo.php
readme.%EXT%
robots.txt
sitemap.xml
test.%EXT%
web.config
`
